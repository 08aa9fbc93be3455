package acceptor

import (
	"net"
	"testing"
	"time"

	"github.com/nanoframe/h2reactor/conn"
	"github.com/nanoframe/h2reactor/frame"
	"github.com/nanoframe/h2reactor/reactor"
	"github.com/nanoframe/h2reactor/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	seen chan stream.ID
}

func (h *countingHandler) HandleRequest(c *conn.Connection, s *stream.Stream) {
	h.seen <- s.ID()
}

func TestAcceptorAcceptsAndRegistersConnections(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	handle, err := reactor.Start(reactor.Config{PollTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	defer handle.Shutdown()

	handler := &countingHandler{seen: make(chan stream.ID, 1)}
	a, err := New(ln, handle, Options{Handler: handler})
	require.NoError(t, err)

	_, err = handle.Register(a, false)
	require.NoError(t, err)

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write([]byte(frame.Preface))
	require.NoError(t, err)

	var h frame.Header
	h.Stream = 1
	hf := &frame.Headers{EndStream: true, EndHeaders: true, Block: []byte("x")}
	var body []byte
	body = hf.Marshal(&h, body)
	h.Kind = hf.Type()
	h.Length = uint32(len(body))

	var raw [frame.HeaderLen]byte
	h.PutHeader(raw[:])
	_, err = client.Write(raw[:])
	require.NoError(t, err)
	_, err = client.Write(body)
	require.NoError(t, err)

	select {
	case id := <-handler.seen:
		assert.Equal(t, stream.ID(1), id)
	case <-time.After(2 * time.Second):
		t.Fatal("handler never saw a stream")
	}
}
