package reactor

import (
	"errors"
	"sync/atomic"
	"time"
)

// ErrShutdown is returned by every Handle method once Shutdown has been
// called, mirroring original_source's Handle::shutdown consuming self.
var ErrShutdown = errors.New("reactor: handle is shut down")

// ErrQueueFull is returned when the mailbox is at capacity. The caller is
// responsible for backpressure: original_source's Handle drops the sender
// back to the caller with the same BoundedQueue-full signal rather than
// blocking the submitting goroutine against the loop's drain rate.
var ErrQueueFull = errors.New("reactor: mailbox queue is full")

// Handle is the external control surface for a running Reactor, the Go
// analogue of original_source rt::Handle: every method here just sends a
// message over the mailbox channel for the loop goroutine to apply, since
// the Slab is only ever safe to touch from that one goroutine.
type Handle struct {
	mailbox chan message
	closed  int32
}

// OnNextTick schedules fn to run on the reactor's loop goroutine at the
// start of its next iteration, before any polling happens.
func (h *Handle) OnNextTick(fn func()) error {
	return h.send(nextTickMsg{fn: fn})
}

// Register adds m to the reactor and arms it for readable events (and
// writable events too, if writable is true). It blocks until the loop
// goroutine has actually performed the registration, returning
// ErrNotPollable if m.Fd() is negative.
func (h *Handle) Register(m Machine, writable bool) (Token, error) {
	result := make(chan registerResult, 1)
	if err := h.send(registerMsg{m: m, writable: writable, result: result}); err != nil {
		return -1, err
	}
	res := <-result
	return res.tok, res.err
}

// Deregister removes tok from the reactor, closing its poller
// registration. It does not close the underlying Machine.
func (h *Handle) Deregister(tok Token) error {
	return h.send(deregisterMsg{tok: tok})
}

// TimeoutMS schedules fn to run after ms milliseconds, on the loop
// goroutine, the Go analogue of original_source Handle::timeout_ms /
// mio::Handler::timeout.
func (h *Handle) TimeoutMS(fn func(), ms int64) error {
	return h.send(timeoutMsg{fn: fn, atNs: nowNano() + ms*int64(time.Millisecond)})
}

// Shutdown stops the reactor's loop goroutine and blocks until it has
// exited. Safe to call at most once; subsequent calls return ErrShutdown.
func (h *Handle) Shutdown() error {
	if !atomic.CompareAndSwapInt32(&h.closed, 0, 1) {
		return ErrShutdown
	}
	done := make(chan struct{})
	select {
	case h.mailbox <- shutdownMsg{done: done}:
	default:
		return ErrQueueFull
	}
	<-done
	return nil
}

func (h *Handle) send(msg message) error {
	if atomic.LoadInt32(&h.closed) != 0 {
		return ErrShutdown
	}
	select {
	case h.mailbox <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}
