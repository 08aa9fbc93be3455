package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimerWheelFiresInOrder(t *testing.T) {
	w := newTimerWheel()

	var order []int
	w.add(30, func() { order = append(order, 3) })
	w.add(10, func() { order = append(order, 1) })
	w.add(20, func() { order = append(order, 2) })

	at, ok := w.nextDeadline()
	assert.True(t, ok)
	assert.Equal(t, int64(10), at)

	w.fireDue(25)
	assert.Equal(t, []int{1, 2}, order)

	at, ok = w.nextDeadline()
	assert.True(t, ok)
	assert.Equal(t, int64(30), at)

	w.fireDue(100)
	assert.Equal(t, []int{1, 2, 3}, order)

	_, ok = w.nextDeadline()
	assert.False(t, ok)
}
