package conn

import (
	"github.com/nanoframe/h2reactor/frame"
	"github.com/nanoframe/h2reactor/internal/buf"
	"github.com/nanoframe/h2reactor/stream"
)

// dispatch applies one parsed frame to the connection. It returns a
// *stream.ConnError to tear down the whole connection, a *stream.StreamErr
// to reset just the offending stream, or a plain error for an
// unrecoverable transport failure.
//
// Every byte slice dispatch retains past this call (header-block
// fragments, request body chunks) is kept as a refcounted buf.Slice over
// the read buffer (see retainSlice) rather than copied, so the bytes stay
// valid after the caller compacts or replaces that buffer.
func (c *Connection) dispatch(h frame.Header, p frame.Payload) error {
	if h.Stream == 0 {
		return c.dispatchConnectionFrame(h, p)
	}
	return c.dispatchStreamFrame(h, p)
}

func (c *Connection) dispatchConnectionFrame(h frame.Header, p frame.Payload) error {
	switch fr := p.(type) {
	case *frame.Settings:
		if fr.IsAck() {
			return nil
		}
		c.handleSettings(fr)
	case *frame.WindowUpdate:
		if fr.Increment == 0 {
			return &stream.ConnError{Code: frame.ProtocolError, Msg: "window increment of 0"}
		}
		// Connection-level flow control is tracked by the handler layer
		// per this runtime's design (see Open Questions); nothing to do
		// here beyond accepting the frame.
	case *frame.Ping:
		if !fr.Ack {
			c.replyPing(fr)
		}
	case *frame.GoAway:
		c.closing = true
	case *frame.Priority:
		// legal without a stream id in some deployed clients; ignore.
	default:
		return &stream.ConnError{Code: frame.ProtocolError, Msg: "invalid connection-level frame " + h.Kind.String()}
	}

	return nil
}

func (c *Connection) dispatchStreamFrame(h frame.Header, p frame.Payload) error {
	if uint32(h.Stream)&1 == 0 {
		return &stream.ConnError{Code: frame.ProtocolError, Msg: "even-numbered stream id from client"}
	}
	if h.Kind == frame.TypePing || h.Kind == frame.TypeSettings {
		return &stream.ConnError{Code: frame.ProtocolError, Msg: h.Kind.String() + " carries a stream id"}
	}

	sid := stream.ID(h.Stream)
	strm := c.streams.Get(sid)

	if strm == nil {
		var err error
		strm, err = c.admitStream(sid, h.Kind)
		if err != nil {
			return err
		}
		if strm == nil {
			return nil // RST_STREAM/PRIORITY on an untracked stream: ignored
		}
	}

	prev := strm.State()
	dir := stream.Recv
	if err := stream.Transition(strm, h.Kind, dir, h.Flags); err != nil {
		return err
	}

	if err := c.applyFrameToStream(strm, h, p); err != nil {
		return err
	}

	// Dispatch only on the frame that ends the peer's side of the stream,
	// never on a later frame or on RST_STREAM.
	endedNow := prev != stream.HalfClosedRemote && prev != stream.Closed && h.Kind != frame.TypeRstStream
	if endedNow && (strm.State() == stream.Closed || strm.State() == stream.HalfClosedRemote) {
		if strm.HeadersFinished {
			c.dispatchHandler(strm)
			// The handler runs synchronously and, per its contract, must
			// not retain HeaderBlock/BodyBytes past return; release the
			// retained read-buffer slices now rather than waiting for
			// this stream to be pooled, so the reactor's AppendBuf chain
			// doesn't grow for the rest of a long HalfClosedRemote life.
			strm.ReleaseBuffers()
		}
	}

	if strm.State() == stream.Closed {
		c.streams.Delete(strm.ID())
		stream.Release(strm)
	}

	return nil
}

// admitStream creates a new stream table entry for a frame that referenced
// an id not currently tracked, applying the RFC 7540 5.1.1 ordering and
// concurrency rules. It returns a nil stream (and nil error) when the frame
// is legally ignorable (RST_STREAM or PRIORITY on an untracked stream); a
// refused stream is reported as a *stream.StreamErr with REFUSED_STREAM.
func (c *Connection) admitStream(sid stream.ID, kind frame.Type) (*stream.Stream, error) {
	if kind == frame.TypeRstStream || kind == frame.TypePriority {
		// RST_STREAM/PRIORITY referencing a stream we never heard of and
		// that isn't in our table is simply stale; ignore it.
		return nil, nil
	}

	if sid <= c.lastID {
		return nil, &stream.ConnError{Code: frame.ProtocolError, Msg: "stream id lower than latest"}
	}

	maxStreams, _ := c.LocalSettings.Get(frame.SettingMaxConcurrentStreams)
	if uint32(c.streams.Len()) >= maxStreams || c.closing {
		return nil, &stream.StreamErr{ID: sid, Code: frame.RefusedStreamError, Msg: "refused"}
	}

	window, _ := c.ClientSettings.Get(frame.SettingInitialWindowSize)
	if window == 0 {
		window = 1 << 16
	}

	strm := stream.Acquire(sid, int64(window))
	strm.OrigType = kind
	strm.StartedAt = nowFunc()
	c.streams.Insert(strm)

	if kind == frame.TypeHeaders {
		c.lastID = sid
	}

	return strm, nil
}

func (c *Connection) applyFrameToStream(strm *stream.Stream, h frame.Header, p frame.Payload) error {
	switch fr := p.(type) {
	case *frame.Headers:
		return c.appendHeaderBlock(strm, fr.HeaderBlock(), fr.EndHeaders)
	case *frame.Continuation:
		return c.appendHeaderBlock(strm, fr.HeaderBlock(), fr.EndHeaders)
	case *frame.Data:
		if !strm.HeadersFinished {
			return &stream.ConnError{Code: frame.ProtocolError, Msg: "data before end of headers"}
		}
		strm.Body = append(strm.Body, c.retainSlice(fr.Bytes))
	case *frame.WindowUpdate:
		if fr.Increment == 0 {
			return &stream.ConnError{Code: frame.ProtocolError, Msg: "window increment of 0"}
		}
		strm.IncrWindow(int64(fr.Increment))
	case *frame.Priority:
		// priority reprioritization is accepted but not acted on by this
		// runtime; the frame's dependency and weight are not recorded.
		_ = fr
	case *frame.RstStream:
		// state already moved to Closed by Transition.
	}

	return nil
}

func (c *Connection) appendHeaderBlock(strm *stream.Stream, block []byte, endHeaders bool) error {
	strm.PendingHeaderBlock = append(strm.PendingHeaderBlock, c.retainSlice(block))

	if !endHeaders {
		return nil
	}

	strm.HeadersFinished = true
	return nil
}

// retainSlice takes a refcounted buf.Slice over sub's exact range within
// the connection's read buffer, so those bytes stay valid past the next
// read or compaction instead of being copied out immediately. sub must be
// a byte slice obtained purely by front/back reslicing of c.unconsumed()
// — true of every frame.Payload.Decode in this runtime, which only ever
// trims a frame's raw payload (stripping PADDED/PRIORITY prefixes and
// trailing padding) and never copies or appends it. That invariant means
// sub's capacity relative to unconsumed's capacity pins down exactly
// where sub starts, with no pointer arithmetic needed.
func (c *Connection) retainSlice(sub []byte) buf.Slice {
	full := c.unconsumed()
	off := cap(full) - cap(sub)
	start := c.consumePos + off
	return c.rbuf.Slice(start, start+len(sub))
}

func (c *Connection) dispatchHandler(strm *stream.Stream) {
	if c.handler != nil {
		c.handler.HandleRequest(c, strm)
	}
}

func (c *Connection) handleSettings(s *frame.Settings) {
	s.Pairs = append(c.ClientSettings.Pairs[:0], s.Pairs...)
	c.ClientSettings.Pairs = s.Pairs

	ack := &frame.Settings{Ack: true}
	c.enqueue(frame.Header{Kind: frame.TypeSettings}, ack, nil)
}

func (c *Connection) replyPing(p *frame.Ping) {
	reply := &frame.Ping{Ack: true, Data: p.Data}
	c.enqueue(frame.Header{Kind: frame.TypePing}, reply, nil)
}

func (c *Connection) sendGoAway(code frame.ErrorCode, msg string) {
	ga := &frame.GoAway{LastStreamID: c.lastID, Code: code, Debug: []byte(msg)}
	c.enqueue(frame.Header{Kind: frame.TypeGoAway}, ga, func(conn *Connection, _ error) {
		_ = conn.Close()
	})
	c.closing = true
}

func (c *Connection) sendReset(id stream.ID, code frame.ErrorCode) {
	rst := &frame.RstStream{Code: code}
	c.enqueue(frame.Header{Kind: frame.TypeRstStream, Stream: frame.StreamID(id)}, rst, nil)
}
