package reactor

// Token indexes a Machine registered with a Reactor. It is the Go analogue
// of mio::Token in original_source's loophandler.rs.
type Token int

// Machine is anything the reactor can drive: an Acceptor or a Connection.
// Both satisfy this by structural typing alone — neither package imports
// reactor, and reactor imports neither, so there is no dependency cycle to
// avoid.
type Machine interface {
	// Fd returns the OS file descriptor to poll. A negative value means
	// this Machine cannot be polled and Register returns an error.
	Fd() int
	// WantWrite reports whether the machine currently has output queued,
	// so the reactor knows whether to keep EPOLLOUT armed.
	WantWrite() bool
	// OnReadable is called when the fd is readable. keepAlive false (or
	// a non-nil err) removes the Machine from the slab and closes it out.
	OnReadable() (keepAlive bool, err error)
	// OnWritable is called when the fd is writable.
	OnWritable() (keepAlive bool, err error)
	// Close releases whatever this Machine holds open — the socket and
	// any pooled buffers — once the reactor has decided to drop it. It
	// is called at most once, and only after the final OnReadable/
	// OnWritable, so implementations don't need to guard against
	// concurrent use from the dispatch goroutine.
	Close() error
}

// slotState distinguishes a slab slot that holds a Machine from one that's
// free, and from one that's Active — mid-dispatch, its Machine temporarily
// removed from the slab so a readiness callback can never recurse into
// itself. See original_source loophandler.rs's IoMachine::Active variant
// and its "Recursive readiness!" panic.
type slotState uint8

const (
	slotFree slotState = iota
	slotOccupied
	slotActive
)

type slot struct {
	state slotState
	m     Machine
	next  int // free-list link when state == slotFree; unused otherwise
}

// Slab is a dense, reusable array of Machines indexed by Token, mirroring
// mio::util::Slab. Insert/Remove run in O(1); the free list threads
// through unused slots so the backing array never shrinks.
type Slab struct {
	slots    []slot
	freeHead int
}

// NewSlab allocates a Slab with room for capacityHint entries before its
// first grow.
func NewSlab(capacityHint int) *Slab {
	if capacityHint <= 0 {
		capacityHint = 1024
	}
	return &Slab{
		slots:    make([]slot, 0, capacityHint),
		freeHead: -1,
	}
}

// Insert adds m to the slab and returns its Token.
func (s *Slab) Insert(m Machine) Token {
	if s.freeHead >= 0 {
		idx := s.freeHead
		s.freeHead = s.slots[idx].next
		s.slots[idx] = slot{state: slotOccupied, m: m}
		return Token(idx)
	}

	s.slots = append(s.slots, slot{state: slotOccupied, m: m})
	return Token(len(s.slots) - 1)
}

// Get returns the Machine at t, or nil if the slot is free or Active.
func (s *Slab) Get(t Token) Machine {
	if !s.valid(t) || s.slots[t].state != slotOccupied {
		return nil
	}
	return s.slots[t].m
}

// Take marks t Active and returns its Machine, so the caller can run a
// readiness callback without the slab handing the same Machine to a
// re-entrant event. Returns nil if t is out of range, free, or already
// Active (the panic case original_source guards against).
func (s *Slab) Take(t Token) Machine {
	if !s.valid(t) || s.slots[t].state != slotOccupied {
		return nil
	}
	m := s.slots[t].m
	s.slots[t] = slot{state: slotActive}
	return m
}

// Put reinstates t with m after a Take. Passing a nil m frees the slot
// instead, matching the Rust side's `None => slab.remove(token)`.
func (s *Slab) Put(t Token, m Machine) {
	if !s.valid(t) {
		return
	}
	if m == nil {
		s.free(t)
		return
	}
	s.slots[t] = slot{state: slotOccupied, m: m}
}

// Remove frees t unconditionally.
func (s *Slab) Remove(t Token) {
	if !s.valid(t) {
		return
	}
	s.free(t)
}

func (s *Slab) free(t Token) {
	s.slots[t] = slot{state: slotFree, next: s.freeHead}
	s.freeHead = int(t)
}

func (s *Slab) valid(t Token) bool {
	return t >= 0 && int(t) < len(s.slots)
}
