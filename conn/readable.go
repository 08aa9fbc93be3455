package conn

import (
	"errors"
	"time"

	"github.com/nanoframe/h2reactor/frame"
	"github.com/nanoframe/h2reactor/stream"
)

// nowFunc is overridable in tests.
var nowFunc = time.Now

// Readable is called by the reactor when epoll reports the socket's fd is
// readable. It drains the kernel buffer into rbuf with nonblocking reads,
// parsing and dispatching as many complete frames as are available, and
// returns once the socket reports EAGAIN (no more to read right now) or an
// error/EOF tears the connection down.
//
// Readable never blocks and never loops waiting for more bytes than the
// kernel currently has buffered: an incomplete frame at the tail of rbuf
// simply waits for the next readiness notification.
func (c *Connection) Readable() error {
	for {
		if c.rbuf.Full() {
			c.compactReadBuffer()
			if c.rbuf.Full() {
				// A single frame's payload exceeds ReadBufferSize; the
				// caller should raise Options.ReadBufferSize to admit it.
				return frame.ErrPayloadExceeds
			}
		}

		n, err := c.rw.Read(c.rbuf.Writable())
		if err != nil {
			if errors.Is(err, errShortRead) {
				return nil
			}
			return err
		}

		c.rbuf.Advance(n)

		if err := c.drainFrames(); err != nil {
			return err
		}
	}
}

// compactReadBuffer replaces rbuf with a fresh AppendBuf holding just the
// unconsumed tail, per spec.md section 4.4. Byte ranges dispatch() wants
// to retain past the current call have already been taken as their own
// buf.Slice over the old rbuf (see dispatch.go's retainSlice), so they
// stay valid — kept alive by their own reference — even once this swaps
// rbuf out from under them.
func (c *Connection) compactReadBuffer() {
	c.rbuf = c.rbuf.Compact(c.consumePos)
	c.consumePos = 0
}

func (c *Connection) unconsumed() []byte {
	return c.rbuf.Bytes()[c.consumePos:]
}

func (c *Connection) consume(n int) {
	c.consumePos += n
	if c.consumePos == c.rbuf.Len() {
		c.compactReadBuffer()
	}
}

func (c *Connection) drainFrames() error {
	for {
		if !c.prefaceOK {
			ok, consumed := frame.CheckPreface(c.unconsumed())
			if consumed == 0 {
				return nil // need more bytes
			}
			if !ok {
				return frame.ErrBadPreface
			}
			c.prefaceOK = true
			c.consume(consumed)
			continue
		}

		maxLen, _ := c.LocalSettings.Get(frame.SettingMaxFrameSize)
		if maxLen == 0 {
			maxLen = 1 << 14
		}

		h, payload, n, err := frame.TryParse(c.unconsumed(), maxLen)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil // need more bytes
		}

		c.lastActivity = nowFunc()

		if dispatchErr := c.dispatch(h, payload); dispatchErr != nil {
			if ce, ok := stream.AsConnError(dispatchErr); ok {
				c.sendGoAway(ce.Code, ce.Msg)
				c.consume(n)
				return nil
			}
			if se, ok := stream.AsStreamErr(dispatchErr); ok {
				c.sendReset(se.ID, se.Code)
				c.consume(n)
				continue
			}
			return dispatchErr
		}

		c.consume(n)
	}
}
