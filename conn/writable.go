package conn

import (
	"github.com/nanoframe/h2reactor/frame"
)

// enqueue appends a frame to the outbound FIFO. done, if non-nil, fires
// once the frame is fully flushed; if the connection fails before that
// happens, done is never called (see failOutbound).
func (c *Connection) enqueue(h frame.Header, p frame.Payload, done func(*Connection, error)) {
	var body []byte
	body = p.Marshal(&h, body)
	h.Kind = p.Type()

	c.outQueue = append(c.outQueue, outbound{
		enc:  frame.NewEncoder(h, body),
		done: done,
	})
}

// WritePending reports whether there are queued frames awaiting flush; the
// reactor uses this to decide whether to keep the fd registered for
// writable events.
func (c *Connection) WritePending() bool {
	return len(c.outQueue) > 0
}

// Writable is called by the reactor when epoll reports the socket's fd is
// writable. It flushes as many queued frames as the socket currently
// accepts, stopping at the first WouldBlock so the reactor thread is never
// stalled behind a slow peer.
func (c *Connection) Writable() error {
	for len(c.outQueue) > 0 {
		head := &c.outQueue[0]

		res := head.enc.WriteTo(c.rw)

		switch res.Status {
		case frame.StatusFinished:
			done := head.done
			c.outQueue = c.outQueue[1:]
			if done != nil {
				done(c, nil)
			}
		case frame.StatusWouldBlock:
			return nil
		case frame.StatusEOF, frame.StatusError:
			err := res.Err
			if err == nil {
				err = errConnClosed
			}
			c.failOutbound(err)
			return err
		default: // StatusWrote: partial progress, socket buffer is now full
			return nil
		}
	}

	return nil
}

// failOutbound drops every queued outbound frame on abrupt termination
// (EOF or a write error) without invoking its completion callback. This
// preserves dgrr-http2's own behavior of dropping its queued writer
// channel entries on Close without flushing them (see Open Question (a)
// in DESIGN.md) rather than reporting a failure through done for writes
// the peer will never see acknowledged anyway.
func (c *Connection) failOutbound(err error) {
	c.outQueue = nil
}
