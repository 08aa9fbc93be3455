package conn

import (
	"errors"
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/nanoframe/h2reactor/frame"
)

// fder is satisfied by *net.TCPConn and the net package's other socket
// types (not by *tls.Conn, which has no SyscallConn), letting us reach
// into the raw, already-nonblocking file descriptor the reactor
// registered with epoll.
type fder interface {
	SyscallConn() (syscall.RawConn, error)
}

// rawFD extracts the OS file descriptor backing c.
func rawFD(c net.Conn) (int, error) {
	sc, ok := c.(fder)
	if !ok {
		return -1, errors.New("conn: underlying connection does not expose a raw fd")
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

// rawReadWriter adapts a raw nonblocking fd to frame.Writer and to the
// byte-slice reads Connection.Readable needs, translating EAGAIN into the
// sentinel errors the rest of the runtime checks with errors.Is.
type rawReadWriter struct {
	fd int
}

func (rw rawReadWriter) Write(b []byte) (int, error) {
	n, err := unix.Write(rw.fd, b)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, frame.ErrWouldBlock
		}
		return 0, err
	}
	return n, nil
}

func (rw rawReadWriter) Read(b []byte) (int, error) {
	n, err := unix.Read(rw.fd, b)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, errShortRead
		}
		return 0, err
	}
	if n == 0 {
		return 0, errConnClosed
	}
	return n, nil
}

var errConnClosed = errors.New("conn: peer closed connection")

// ioReadWriter is the narrow surface Connection needs from its transport:
// nonblocking-flavored Read/Write that report errShortRead/ErrWouldBlock
// instead of parking a goroutine.
type ioReadWriter interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
}

// blockingReadWriter is the fallback used when the transport doesn't
// expose a raw fd. It never returns errShortRead/ErrWouldBlock, so a
// Connection driven through it degrades to ordinary blocking I/O on
// whatever goroutine calls Readable/Writable.
type blockingReadWriter struct {
	net.Conn
}

