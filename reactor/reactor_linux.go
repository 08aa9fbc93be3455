//go:build linux

package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

// epollPoller implements poller over golang.org/x/sys/unix epoll calls,
// registered edge-triggered (EPOLLET) exactly as original_source's mio
// backend used PollOpt::edge() for every Evented it registered.
type epollPoller struct {
	epfd int
	raw  []unix.EpollEvent
}

// newPoller's slab parameter is unused on linux: the epoll event itself
// carries the token, unlike the non-linux fallback which needs the slab
// to look Machines up from inside its driver goroutines.
func newPoller(_ *Slab) (poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{epfd: fd, raw: make([]unix.EpollEvent, 256)}, nil
}

func interestMask(writable bool) uint32 {
	events := uint32(unix.EPOLLIN | unix.EPOLLET | unix.EPOLLRDHUP)
	if writable {
		events |= unix.EPOLLOUT
	}
	return events
}

func (p *epollPoller) add(fd int, tok Token, writable bool) error {
	ev := unix.EpollEvent{Events: interestMask(writable), Fd: int32(tok)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) modify(fd int, tok Token, writable bool) error {
	ev := unix.EpollEvent{Events: interestMask(writable), Fd: int32(tok)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *epollPoller) remove(fd int) error {
	err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.ENOENT || err == unix.EBADF {
		return nil
	}
	return err
}

func (p *epollPoller) wait(events []pollEvent, timeout time.Duration) ([]pollEvent, error) {
	ms := int(timeout / time.Millisecond)
	if timeout < 0 {
		ms = -1
	}

	n, err := unix.EpollWait(p.epfd, p.raw, ms)
	if err != nil {
		if err == unix.EINTR {
			return events, nil
		}
		return events, err
	}

	for i := 0; i < n; i++ {
		raw := p.raw[i]
		events = append(events, pollEvent{
			token:    Token(raw.Fd),
			readable: raw.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0,
			writable: raw.Events&unix.EPOLLOUT != 0,
		})
	}
	return events, nil
}

func (p *epollPoller) close() error {
	return unix.Close(p.epfd)
}
