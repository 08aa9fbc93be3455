package reactor

import "time"

// pollEvent is one readiness notification, already demuxed by token.
type pollEvent struct {
	token    Token
	readable bool
	writable bool
	// closed is set only by the non-linux fallback driver: it means the
	// Machine already ran itself to completion on its own goroutine and
	// the reactor loop should just drop it from the slab, not dispatch
	// to it again.
	closed bool
}

// poller is the portable seam between Reactor and the OS polling
// mechanism. reactor_linux.go backs it with epoll; reactor_other.go backs
// it with a degraded fallback documented in the package comment in
// reactor.go.
type poller interface {
	// add registers fd for readable events, and for writable events too
	// when writable is true.
	add(fd int, tok Token, writable bool) error
	// modify changes fd's registered interest set.
	modify(fd int, tok Token, writable bool) error
	// remove deregisters fd. Safe to call on an fd already removed.
	remove(fd int) error
	// wait blocks up to timeout for readiness, appending to and
	// returning events[:n].
	wait(events []pollEvent, timeout time.Duration) ([]pollEvent, error)
	close() error
}
