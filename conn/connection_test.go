package conn

import (
	"net"
	"testing"
	"time"

	"github.com/nanoframe/h2reactor/frame"
	"github.com/nanoframe/h2reactor/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	streams []*stream.Stream
}

func (h *recordingHandler) HandleRequest(c *Connection, s *stream.Stream) {
	h.streams = append(h.streams, s)
}

func writeFrame(t *testing.T, w net.Conn, h frame.Header, p frame.Payload) {
	t.Helper()

	var body []byte
	body = p.Marshal(&h, body)
	h.Kind = p.Type()
	h.Length = uint32(len(body))

	var raw [frame.HeaderLen]byte
	h.PutHeader(raw[:])

	_, err := w.Write(raw[:])
	require.NoError(t, err)
	_, err = w.Write(body)
	require.NoError(t, err)
}

func TestConnectionReceivesSimpleRequest(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	h := &recordingHandler{}
	c := New(server, h, Options{})
	defer c.Close()

	done := make(chan error, 1)
	go func() {
		_, err := client.Write([]byte(frame.Preface))
		if err != nil {
			done <- err
			return
		}

		writeFrame(t, client, frame.Header{Stream: 1}, &frame.Headers{
			EndStream:  true,
			EndHeaders: true,
			Block:      []byte("fake-header-block"),
		})
		done <- nil
	}()

	require.NoError(t, <-done)

	require.NoError(t, c.Readable())

	require.Len(t, h.streams, 1)
	assert.Equal(t, stream.ID(1), h.streams[0].ID())
	assert.True(t, h.streams[0].HeadersFinished)
}

func TestConnectionRejectsEvenStreamID(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	c := New(server, &recordingHandler{}, Options{})
	defer c.Close()

	done := make(chan error, 1)
	go func() {
		if _, err := client.Write([]byte(frame.Preface)); err != nil {
			done <- err
			return
		}
		writeFrame(t, client, frame.Header{Stream: 2}, &frame.Headers{EndHeaders: true, EndStream: true})
		done <- nil
	}()
	require.NoError(t, <-done)

	go func() {
		buf := make([]byte, 4096)
		client.SetReadDeadline(time.Now().Add(time.Second))
		client.Read(buf)
	}()

	require.NoError(t, c.Readable())
}
