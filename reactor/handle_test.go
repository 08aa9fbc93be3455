package reactor

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeMachine adapts an os.Pipe read end into a Machine for exercising
// the reactor loop without a real socket.
type pipeMachine struct {
	r      *os.File
	mu     sync.Mutex
	reads  int
	closed bool
}

func (m *pipeMachine) Fd() int         { return int(m.r.Fd()) }
func (m *pipeMachine) WantWrite() bool { return false }

func (m *pipeMachine) OnReadable() (bool, error) {
	buf := make([]byte, 64)
	n, err := m.r.Read(buf)
	m.mu.Lock()
	m.reads++
	m.mu.Unlock()
	if err != nil || n == 0 {
		return false, err
	}
	return true, nil
}

func (m *pipeMachine) OnWritable() (bool, error) { return true, nil }

func (m *pipeMachine) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return m.r.Close()
}

func (m *pipeMachine) readCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

func TestReactorRegisterAndDispatch(t *testing.T) {
	h, err := Start(Config{PollTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	defer h.Shutdown()

	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	defer pw.Close()
	defer pr.Close()

	m := &pipeMachine{r: pr}
	tok, err := h.Register(m, false)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, int(tok), 0)

	_, err = pw.Write([]byte("hi"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return m.readCount() > 0
	}, time.Second, 5*time.Millisecond)
}

func TestHandleOnNextTick(t *testing.T) {
	h, err := Start(Config{PollTimeout: 10 * time.Millisecond})
	require.NoError(t, err)
	defer h.Shutdown()

	done := make(chan struct{})
	require.NoError(t, h.OnNextTick(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("next-tick callback never ran")
	}
}

func TestHandleTimeoutMS(t *testing.T) {
	h, err := Start(Config{PollTimeout: 10 * time.Millisecond})
	require.NoError(t, err)
	defer h.Shutdown()

	done := make(chan struct{})
	require.NoError(t, h.TimeoutMS(func() { close(done) }, 20))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout callback never ran")
	}
}

func TestHandleShutdownIsIdempotentToErrors(t *testing.T) {
	h, err := Start(Config{})
	require.NoError(t, err)

	require.NoError(t, h.Shutdown())
	assert.ErrorIs(t, h.OnNextTick(func() {}), ErrShutdown)
}

func TestRegisterRejectsUnpollableMachine(t *testing.T) {
	h, err := Start(Config{})
	require.NoError(t, err)
	defer h.Shutdown()

	_, err = h.Register(&fakeMachine{fd: -1}, false)
	assert.ErrorIs(t, err, ErrNotPollable)
}
