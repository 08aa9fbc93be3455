package reactor

// message is what callers send into a running Reactor's mailbox — the Go
// translation of original_source rt/mod.rs's Message enum, applied from
// inside the single loop goroutine so the Slab never needs a mutex.
type message interface {
	apply(r *Reactor)
}

type nextTickMsg struct {
	fn func()
}

func (m nextTickMsg) apply(r *Reactor) {
	m.fn()
}

type registerResult struct {
	tok Token
	err error
}

type registerMsg struct {
	m        Machine
	writable bool
	result   chan<- registerResult
}

func (m registerMsg) apply(r *Reactor) {
	tok, err := r.registerLocked(m.m, m.writable)
	if m.result != nil {
		m.result <- registerResult{tok: tok, err: err}
	}
}

type deregisterMsg struct {
	tok Token
}

func (m deregisterMsg) apply(r *Reactor) {
	r.deregisterLocked(m.tok)
}

type timeoutMsg struct {
	fn   func()
	atNs int64
}

func (m timeoutMsg) apply(r *Reactor) {
	r.timers.add(m.atNs, m.fn)
}

type shutdownMsg struct {
	done chan<- struct{}
}

func (m shutdownMsg) apply(r *Reactor) {
	r.shuttingDown = true
	r.shutdownAck = m.done
}
