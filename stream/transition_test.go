package stream

import (
	"testing"

	"github.com/nanoframe/h2reactor/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdleHeadersOpensStream(t *testing.T) {
	s := New(1, 0)
	err := Transition(s, frame.TypeHeaders, Recv, 0)
	require.NoError(t, err)
	assert.Equal(t, Open, s.State())
}

func TestIdleHeadersWithEndStreamHalfClosesRemote(t *testing.T) {
	s := New(1, 0)
	err := Transition(s, frame.TypeHeaders, Recv, frame.FlagEndStream)
	require.NoError(t, err)
	assert.Equal(t, HalfClosedRemote, s.State())
}

func TestIdleDataIsConnectionError(t *testing.T) {
	s := New(1, 0)
	err := Transition(s, frame.TypeData, Recv, 0)
	ce, ok := AsConnError(err)
	require.True(t, ok)
	assert.Equal(t, frame.ProtocolError, ce.Code)
}

func TestFullRequestResponseLifecycle(t *testing.T) {
	s := New(1, 0)
	require.NoError(t, Transition(s, frame.TypeHeaders, Recv, frame.FlagEndStream))
	require.Equal(t, HalfClosedRemote, s.State())

	// server replies with its own END_STREAM headers.
	require.NoError(t, Transition(s, frame.TypeHeaders, Send, frame.FlagEndStream))
	assert.Equal(t, Closed, s.State())
}

func TestHalfClosedRemoteRejectsFurtherData(t *testing.T) {
	s := New(1, 0)
	s.SetState(HalfClosedRemote)

	err := Transition(s, frame.TypeData, Recv, 0)
	se, ok := AsStreamErr(err)
	require.True(t, ok)
	assert.Equal(t, frame.StreamClosedError, se.Code)
}

func TestPriorityLegalInAnyState(t *testing.T) {
	for _, st := range []State{Idle, Open, HalfClosedLocal, HalfClosedRemote, Closed} {
		s := New(1, 0)
		s.SetState(st)
		err := Transition(s, frame.TypePriority, Recv, 0)
		assert.NoErrorf(t, err, "state %s", st)
	}
}

func TestRstStreamAlwaysCloses(t *testing.T) {
	s := New(1, 0)
	s.SetState(Open)
	require.NoError(t, Transition(s, frame.TypeRstStream, Recv, 0))
	assert.Equal(t, Closed, s.State())
}

func TestTableInsertGetDelete(t *testing.T) {
	var tbl Table
	tbl.Insert(New(3, 0))
	tbl.Insert(New(1, 0))
	tbl.Insert(New(5, 0))

	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, ID(1), tbl.Get(1).ID())
	assert.Equal(t, ID(5), tbl.Get(5).ID())
	assert.Nil(t, tbl.Get(7))

	removed := tbl.Delete(3)
	require.NotNil(t, removed)
	assert.Equal(t, 2, tbl.Len())
	assert.Nil(t, tbl.Get(3))
}
