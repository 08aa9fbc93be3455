package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMachine struct {
	fd int
}

func (m *fakeMachine) Fd() int                           { return m.fd }
func (m *fakeMachine) WantWrite() bool                   { return false }
func (m *fakeMachine) OnReadable() (bool, error)         { return true, nil }
func (m *fakeMachine) OnWritable() (bool, error)         { return true, nil }
func (m *fakeMachine) Close() error                      { return nil }

func TestSlabInsertGetRemove(t *testing.T) {
	s := NewSlab(4)

	a := &fakeMachine{fd: 1}
	b := &fakeMachine{fd: 2}

	ta := s.Insert(a)
	tb := s.Insert(b)

	assert.Same(t, a, s.Get(ta))
	assert.Same(t, b, s.Get(tb))

	s.Remove(ta)
	assert.Nil(t, s.Get(ta))
	assert.Same(t, b, s.Get(tb))
}

func TestSlabReusesFreedSlots(t *testing.T) {
	s := NewSlab(1)

	ta := s.Insert(&fakeMachine{fd: 1})
	s.Remove(ta)

	tb := s.Insert(&fakeMachine{fd: 2})
	assert.Equal(t, ta, tb, "freed slot should be reused before growing")
}

func TestSlabTakeMarksActive(t *testing.T) {
	s := NewSlab(4)
	m := &fakeMachine{fd: 1}
	tok := s.Insert(m)

	taken := s.Take(tok)
	require.Same(t, m, taken)

	// While Active, Get and a second Take must both see nothing: this is
	// the guard against a readiness callback recursing into itself.
	assert.Nil(t, s.Get(tok))
	assert.Nil(t, s.Take(tok))

	s.Put(tok, taken)
	assert.Same(t, m, s.Get(tok))
}

func TestSlabPutNilFreesSlot(t *testing.T) {
	s := NewSlab(4)
	tok := s.Insert(&fakeMachine{fd: 1})

	s.Take(tok)
	s.Put(tok, nil)

	assert.Nil(t, s.Get(tok))

	reused := s.Insert(&fakeMachine{fd: 2})
	assert.Equal(t, tok, reused)
}
