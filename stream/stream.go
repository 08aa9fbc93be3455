package stream

import (
	"sort"
	"time"

	"github.com/nanoframe/h2reactor/frame"
	"github.com/nanoframe/h2reactor/internal/buf"
)

// ID is a 31-bit stream identifier. Client-initiated streams use odd IDs;
// server-initiated (pushed) streams use even IDs.
//
// https://httpwg.org/specs/rfc7540.html#StreamIdentifiers
type ID uint32

// IsClientInitiated reports whether id was opened by the client.
func (id ID) IsClientInitiated() bool {
	return id != 0 && id&1 == 1
}

// Stream is a single HTTP/2 stream's state, tracked by the connection for
// the duration the stream is not Idle/Closed-and-forgotten.
type Stream struct {
	id    ID
	state State

	// window is this stream's flow-control credit, tracked but (per the
	// runtime's design) not enforced here; the handler decides what to
	// do when it runs low.
	window int64

	// OrigType is the frame type that opened the stream: Headers for an
	// ordinary request, PushPromise for a server push.
	OrigType frame.Type

	// HeadersFinished is set once an END_HEADERS flag closes the header
	// block (across any CONTINUATION frames).
	HeadersFinished bool

	// PendingHeaderBlock accumulates header-block fragments across
	// frames that did not carry END_HEADERS, one buf.Slice per fragment:
	// each fragment is a refcounted view straight into the connection's
	// read buffer rather than a copy, per this runtime's zero-copy design.
	// Use HeaderBlock to read the fragments back as one contiguous []byte.
	PendingHeaderBlock []buf.Slice

	// Body accumulates DATA payload buf.Slices as they arrive, the same
	// retained-not-copied treatment PendingHeaderBlock gets for
	// header-block fragments. Use BodyBytes to read it back.
	Body []buf.Slice

	// StartedAt is used by the connection to time out stalled requests.
	StartedAt time.Time

	// Data is an opaque slot for the handler-facing request/response
	// context; the stream package never interprets it.
	Data interface{}

	// inTransition guards against a frame handler recursively applying
	// another frame to this same stream from within Transition.
	inTransition bool
}

// New creates a Stream in the Idle state with the given initial window.
func New(id ID, window int64) *Stream {
	return &Stream{id: id, state: Idle, window: window}
}

func (s *Stream) ID() ID { return s.id }

func (s *Stream) State() State { return s.state }

func (s *Stream) SetState(state State) { s.state = state }

func (s *Stream) Window() int64 { return s.window }

func (s *Stream) IncrWindow(delta int64) { s.window += delta }

// HeaderBlock returns the accumulated header-block fragments as one
// contiguous byte slice. The common case — a single HEADERS frame with
// END_HEADERS set — returns the sole fragment's bytes directly with no
// copy; multiple fragments (CONTINUATION was used) are concatenated into
// one freshly allocated slice. The result aliases retained read-buffer
// memory and must not be used past a call to ReleaseBuffers.
func (s *Stream) HeaderBlock() []byte { return concatSlices(s.PendingHeaderBlock) }

// BodyBytes returns the accumulated DATA payload as one contiguous byte
// slice, with the same single-fragment no-copy behavior as HeaderBlock.
func (s *Stream) BodyBytes() []byte { return concatSlices(s.Body) }

func concatSlices(slices []buf.Slice) []byte {
	switch len(slices) {
	case 0:
		return nil
	case 1:
		return slices[0].Bytes()
	}

	n := 0
	for _, sl := range slices {
		n += sl.Len()
	}
	out := make([]byte, 0, n)
	for _, sl := range slices {
		out = append(out, sl.Bytes()...)
	}
	return out
}

// ReleaseBuffers releases every read-buffer buf.Slice this stream is
// retaining (header-block fragments and body chunks), letting their
// backing AppendBufs be recycled once every other outstanding Slice over
// them is also released. Callers (the connection, once a handler has
// finished with a request; the pool, on Acquire/Release) must call this
// before HeaderBlock/BodyBytes results go stale.
func (s *Stream) ReleaseBuffers() {
	for _, sl := range s.PendingHeaderBlock {
		sl.Release()
	}
	s.PendingHeaderBlock = s.PendingHeaderBlock[:0]

	for _, sl := range s.Body {
		sl.Release()
	}
	s.Body = s.Body[:0]
}

// Table is a stream list sorted by ID. Lookup is a binary search,
// O(log n); Insert and Delete find their position the same way but then
// shift the slice, which is O(n).
type Table struct {
	list []*Stream
}

// Insert adds s to the table, keeping it sorted by ID. Behavior is
// undefined if a stream with the same ID is already present.
func (t *Table) Insert(s *Stream) {
	i := sort.Search(len(t.list), func(i int) bool {
		return t.list[i].id >= s.id
	})

	t.list = append(t.list, nil)
	copy(t.list[i+1:], t.list[i:])
	t.list[i] = s
}

// Get returns the stream with the given ID, or nil.
func (t *Table) Get(id ID) *Stream {
	i := sort.Search(len(t.list), func(i int) bool {
		return t.list[i].id >= id
	})
	if i < len(t.list) && t.list[i].id == id {
		return t.list[i]
	}
	return nil
}

// Delete removes and returns the stream with the given ID, or nil if it
// wasn't present.
func (t *Table) Delete(id ID) *Stream {
	i := sort.Search(len(t.list), func(i int) bool {
		return t.list[i].id >= id
	})
	if i < len(t.list) && t.list[i].id == id {
		s := t.list[i]
		t.list = append(t.list[:i], t.list[i+1:]...)
		return s
	}
	return nil
}

// Len returns the number of streams currently tracked.
func (t *Table) Len() int { return len(t.list) }

// Each calls fn for every tracked stream, in ascending ID order. fn must
// not mutate the table.
func (t *Table) Each(fn func(*Stream)) {
	for _, s := range t.list {
		fn(s)
	}
}
