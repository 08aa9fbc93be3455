package conn

import (
	"github.com/nanoframe/h2reactor/frame"
	"github.com/nanoframe/h2reactor/stream"
)

// WriteHeaders enqueues a HEADERS frame carrying block (an already
// HPACK-encoded header block, opaque to this runtime per spec.md's
// HPACK non-goal) on s, optionally ending the stream. It is the only
// sanctioned way a Handler may start a response: callers reach it
// through the *Connection passed to HandleRequest, never by constructing
// frame.Headers themselves.
func (c *Connection) WriteHeaders(s *stream.Stream, block []byte, endStream bool) {
	h := frame.Header{Stream: frame.StreamID(s.ID())}
	p := &frame.Headers{EndHeaders: true, EndStream: endStream, Block: block}
	c.enqueue(h, p, nil)
	c.afterSend(s, frame.TypeHeaders, endStream)
}

// WriteData enqueues a DATA frame carrying p on s. done, if non-nil, fires
// once the bytes have been accepted by the socket (see spec.md section 5,
// "Completion callbacks fire strictly after all bytes of that frame have
// been accepted").
func (c *Connection) WriteData(s *stream.Stream, p []byte, endStream bool, done func(*Connection, error)) {
	h := frame.Header{Stream: frame.StreamID(s.ID())}
	body := &frame.Data{EndStream: endStream, Bytes: p}
	c.enqueue(h, body, done)
	c.afterSend(s, frame.TypeData, endStream)
}

// WriteRstStream resets s with code, e.g. in response to a Handler that
// wants to abandon a request it has already accepted.
func (c *Connection) WriteRstStream(s *stream.Stream, code frame.ErrorCode) {
	c.sendReset(s.ID(), code)
}

// afterSend advances s's state machine for the frame this Connection just
// queued to send, the same Transition call dispatch.go drives for frames
// the peer sends us, just with dir == stream.Send.
func (c *Connection) afterSend(s *stream.Stream, kind frame.Type, endStream bool) {
	var flags frame.Flags
	if endStream {
		flags = flags.Add(frame.FlagEndStream)
	}
	if err := stream.Transition(s, kind, stream.Send, flags); err != nil {
		c.logf("conn: local state transition error on stream %d: %v", s.ID(), err)
		return
	}
	if s.State() == stream.Closed {
		c.streams.Delete(s.ID())
		stream.Release(s)
	}
}
