package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Length: 42, Kind: TypeHeaders, Flags: FlagEndHeaders, Stream: 7}

	var raw [HeaderLen]byte
	h.PutHeader(raw[:])

	got := ParseHeader(raw[:])
	assert.Equal(t, h.Length, got.Length)
	assert.Equal(t, h.Kind, got.Kind)
	assert.Equal(t, h.Flags, got.Flags)
	assert.Equal(t, h.Stream, got.Stream)
}

func TestParseHeaderMasksReservedBit(t *testing.T) {
	var raw [HeaderLen]byte
	h := Header{Stream: 0x7fffffff}
	h.PutHeader(raw[:])

	raw[5] |= 0x80 // set the reserved bit on the wire

	got := ParseHeader(raw[:])
	assert.Equal(t, StreamID(0x7fffffff), got.Stream)
}

func TestTryParseNeedsMoreBytes(t *testing.T) {
	h, p, n, err := TryParse([]byte{0, 0, 1, byte(TypePing), 0, 0, 0, 0}, 0)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 0, n)
	assert.Zero(t, h)
}

func TestTryParseData(t *testing.T) {
	data := &Data{EndStream: true, Bytes: []byte("hello")}
	var body []byte
	var hdr Header
	body = data.Marshal(&hdr, body)
	hdr.Length = uint32(len(body))
	hdr.Kind = TypeData
	hdr.Stream = 3

	var raw []byte
	var rawHeader [HeaderLen]byte
	hdr.PutHeader(rawHeader[:])
	raw = append(raw, rawHeader[:]...)
	raw = append(raw, body...)

	h, p, n, err := TryParse(raw, 0)
	require.NoError(t, err)
	require.Equal(t, len(raw), n)
	require.NotNil(t, p)
	assert.Equal(t, StreamID(3), h.Stream)

	got, ok := p.(*Data)
	require.True(t, ok)
	assert.True(t, got.EndStream)
	assert.Equal(t, []byte("hello"), got.Bytes)
}

func TestPayloadExceedsMaxLen(t *testing.T) {
	var raw [HeaderLen]byte
	h := Header{Length: 100, Kind: TypeData}
	h.PutHeader(raw[:])

	_, _, _, err := TryParse(raw[:], 10)
	assert.ErrorIs(t, err, ErrPayloadExceeds)
}

func TestEncoderResumesAcrossShortWrites(t *testing.T) {
	data := &Data{Bytes: []byte("0123456789")}
	var hdr Header
	hdr.Kind = TypeData
	hdr.Stream = 5

	body := data.Marshal(&hdr, nil)
	enc := NewEncoder(hdr, body)

	w := &stutterWriter{max: 4}

	var res Result
	for !enc.Done() {
		res = enc.WriteTo(w)
		if res.Status == StatusError {
			t.Fatalf("unexpected error: %v", res.Err)
		}
	}

	assert.Equal(t, StatusFinished, res.Status)
	assert.Equal(t, HeaderLen+len(body), len(w.written))
}

// stutterWriter accepts at most max bytes per call, simulating a socket
// buffer that fills up mid-frame.
type stutterWriter struct {
	written []byte
	max     int
}

func (w *stutterWriter) Write(b []byte) (int, error) {
	n := len(b)
	if n > w.max {
		n = w.max
	}
	w.written = append(w.written, b[:n]...)
	return n, nil
}
