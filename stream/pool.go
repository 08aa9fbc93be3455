package stream

import (
	"sync"
	"time"
)

var pool = sync.Pool{
	New: func() interface{} { return &Stream{} },
}

// Acquire returns a pooled Stream reset to Idle with the given id/window.
func Acquire(id ID, window int64) *Stream {
	s := pool.Get().(*Stream)
	s.id = id
	s.state = Idle
	s.window = window
	s.OrigType = 0
	s.HeadersFinished = false
	s.ReleaseBuffers()
	s.StartedAt = time.Time{}
	s.Data = nil
	s.inTransition = false
	return s
}

// Release returns s to the pool. The caller must not use s afterward.
// Any header-block or body buf.Slices the stream never had released are
// released here, so a connection that skips straight to Release (an
// abrupt RST_STREAM/GOAWAY teardown, say) still can't leak a reference
// into the read buffer.
func Release(s *Stream) {
	s.ReleaseBuffers()
	pool.Put(s)
}
