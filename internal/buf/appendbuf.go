// Package buf implements the zero-copy receive buffer used by the reactor:
// a single writer appends bytes read off the socket into a fixed-capacity
// backing array, and callers take refcounted Slice views into it instead of
// copying. The backing array is only recycled once the writer and every
// outstanding Slice have released their reference.
package buf

import (
	"sync"
	"sync/atomic"
)

const defaultCapacity = 1 << 16

var bufPool = sync.Pool{
	New: func() interface{} {
		return &AppendBuf{}
	},
}

// AppendBuf is a single-writer, fixed-capacity byte buffer. Bytes are
// written into the tail via Writable/Advance, and views of already-written
// bytes are handed out as Slice values. AppendBuf itself must not be used
// from more than one goroutine at a time; Slice values it produces are safe
// to read concurrently and independently from further writes.
type AppendBuf struct {
	data []byte
	// tail is the number of bytes written so far.
	tail int
	// refs counts the writer (1) plus every outstanding Slice.
	refs int32
}

// Acquire returns an AppendBuf with at least capacity bytes of backing
// storage, ready to be written into.
func Acquire(capacity int) *AppendBuf {
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	b := bufPool.Get().(*AppendBuf)
	if cap(b.data) < capacity {
		b.data = make([]byte, capacity)
	}
	b.data = b.data[:cap(b.data)]
	b.tail = 0
	b.refs = 1

	return b
}

// Writable returns the unwritten tail of the buffer. The caller may write
// into it directly and then call Advance with the number of bytes written.
func (b *AppendBuf) Writable() []byte {
	return b.data[b.tail:]
}

// Advance records n additional bytes as written. It panics if n would
// overrun the backing array, since that indicates a caller wrote outside
// the slice returned by Writable.
func (b *AppendBuf) Advance(n int) {
	if b.tail+n > len(b.data) {
		panic("buf: Advance overruns backing array")
	}
	b.tail += n
}

// Len returns the number of bytes written so far.
func (b *AppendBuf) Len() int {
	return b.tail
}

// Cap returns the total backing capacity.
func (b *AppendBuf) Cap() int {
	return len(b.data)
}

// Full reports whether the buffer has no writable room left.
func (b *AppendBuf) Full() bool {
	return b.tail == len(b.data)
}

// Bytes returns every byte written so far.
func (b *AppendBuf) Bytes() []byte {
	return b.data[:b.tail]
}

// Compact discards the first n already-consumed bytes by handing back a
// fresh AppendBuf holding only the remaining, unconsumed tail — never by
// overwriting b's own backing array, since that would corrupt any Slice a
// caller is still holding over bytes before n. b's writer reference is
// released here; the old backing array is only actually recycled once
// every outstanding Slice over it has also been released, exactly the
// "old buffer is dropped when the last slice handed out of it is dropped"
// lifetime this package is built around.
func (b *AppendBuf) Compact(n int) *AppendBuf {
	if n < 0 || n > b.tail {
		panic("buf: Compact n exceeds written length")
	}

	fresh := Acquire(len(b.data))
	tailLen := b.tail - n
	copy(fresh.Writable(), b.data[n:b.tail])
	fresh.Advance(tailLen)

	b.release()
	return fresh
}

// Slice returns a refcounted, immutable view into [from, to) of the bytes
// written so far. The view stays valid, even across further writes into the
// buffer's unwritten tail, until Release is called.
func (b *AppendBuf) Slice(from, to int) Slice {
	if from < 0 || to > b.tail || from > to {
		panic("buf: slice out of range")
	}

	atomic.AddInt32(&b.refs, 1)

	return Slice{
		owner: b,
		bytes: b.data[from:to:to],
	}
}

// Release drops the writer's own reference, recycling the backing array
// once every Slice taken from it has also been released.
func (b *AppendBuf) Release() {
	b.release()
}

func (b *AppendBuf) release() {
	if atomic.AddInt32(&b.refs, -1) == 0 {
		b.data = b.data[:0]
		bufPool.Put(b)
	}
}

// Slice is an immutable, refcounted view into an AppendBuf's backing array.
// It is cheap to copy; Release must be called exactly once per Slice.
type Slice struct {
	owner *AppendBuf
	bytes []byte
}

// Bytes returns the underlying bytes. The caller must not mutate them and
// must not retain them past Release.
func (s Slice) Bytes() []byte {
	return s.bytes
}

// Len returns the length of the view.
func (s Slice) Len() int {
	return len(s.bytes)
}

// Release drops this view's reference on the owning AppendBuf.
func (s Slice) Release() {
	if s.owner != nil {
		s.owner.release()
	}
}
