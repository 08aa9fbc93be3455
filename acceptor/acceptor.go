// Package acceptor implements the listening side of the reactor: a
// Machine that drains a listener's backlog on every readable
// notification instead of blocking a goroutine in Accept. It is grounded
// on original_source's src/rt/acceptor.rs (`loop { accept() } until
// WouldBlock`, registering each accepted Connection back with the same
// event loop) and dgrr-http2/server.go's ServeConn, which this package
// replaces the entry point of: ServeConn ran one blocking accept loop per
// listener goroutine, handing each connection to its own pair of
// goroutines; Acceptor instead hands every connection to the reactor so
// one goroutine can multiplex arbitrarily many of them.
package acceptor

import (
	"errors"
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/nanoframe/h2reactor/conn"
	"github.com/nanoframe/h2reactor/reactor"
)

// Options bundles what every accepted Connection is constructed with.
type Options struct {
	Conn    conn.Options
	Handler conn.Handler
	Logger  interface {
		Printf(format string, args ...interface{})
	}
}

// Acceptor is a reactor.Machine wrapping one listening socket.
type Acceptor struct {
	fd     int
	handle *reactor.Handle
	opts   Options
}

// New wraps l for registration with handle. l must be backed by a raw fd
// (true of *net.TCPListener and *net.UnixListener); the original
// mio::tcp::TcpListener assumption translates directly.
func New(l net.Listener, handle *reactor.Handle, opts Options) (*Acceptor, error) {
	fd, err := rawListenerFD(l)
	if err != nil {
		return nil, err
	}
	return &Acceptor{fd: fd, handle: handle, opts: opts}, nil
}

// Fd, WantWrite, and OnWritable satisfy reactor.Machine; an Acceptor
// never has anything to write, mirroring original_source's assertion
// that an Acceptor only ever sees EventSet::readable().
func (a *Acceptor) Fd() int              { return a.fd }
func (a *Acceptor) WantWrite() bool      { return false }
func (a *Acceptor) OnWritable() (bool, error) { return true, nil }

// Close closes the listening socket. The reactor calls this once, after
// OnReadable has returned keepAlive=false or an error; ordinary shutdown
// goes through Deregister instead; direct closure here only happens on
// listener-level failure.
func (a *Acceptor) Close() error {
	return unix.Close(a.fd)
}

// OnReadable accepts every pending connection on the listener's backlog,
// registering each with the same reactor, and returns once accept(2)
// reports EAGAIN — the non-blocking drain loop the teacher's goroutine-
// per-ServeConn model didn't need but an edge-triggered single thread
// does, since an edge-triggered fd only signals readiness once per batch
// of arrivals.
func (a *Acceptor) OnReadable() (bool, error) {
	for {
		connFd, _, err := unix.Accept(a.fd)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) {
				return true, nil
			}
			if errors.Is(err, unix.ECONNABORTED) || errors.Is(err, unix.EINTR) {
				continue
			}
			return false, err
		}

		if err := unix.SetNonblock(connFd, true); err != nil {
			unix.Close(connFd)
			continue
		}

		nc, err := fdToConn(connFd)
		if err != nil {
			unix.Close(connFd)
			continue
		}

		c := conn.New(nc, a.opts.Handler, a.opts.Conn)
		if _, regErr := a.handle.Register(c, c.WantWrite()); regErr != nil {
			a.logf("acceptor: register failed: %v", regErr)
			c.Close()
		}
	}
}

func (a *Acceptor) logf(format string, args ...interface{}) {
	if a.opts.Logger != nil {
		a.opts.Logger.Printf(format, args...)
	}
}

// fdToConn wraps a raw accepted fd back into a net.Conn. net.FileConn
// dup(2)s the descriptor internally, so closing f right after is correct
// and doesn't affect the returned conn — exactly as net.FileConn's own
// doc comment describes.
func fdToConn(fd int) (net.Conn, error) {
	f := os.NewFile(uintptr(fd), "")
	nc, err := net.FileConn(f)
	f.Close()
	return nc, err
}

type fder interface {
	SyscallConn() (syscall.RawConn, error)
}

func rawListenerFD(l net.Listener) (int, error) {
	sc, ok := l.(fder)
	if !ok {
		return -1, errors.New("acceptor: listener does not expose a raw fd")
	}

	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, err
	}

	var fd int
	var ctrlErr error
	err = raw.Control(func(f uintptr) {
		fd = int(f)
		ctrlErr = unix.SetNonblock(fd, true)
	})
	if err != nil {
		return -1, err
	}
	return fd, ctrlErr
}
