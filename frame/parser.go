package frame

// TryParse attempts to decode a single frame from the front of data, which
// is expected to be the bytes written so far into a reactor-owned
// AppendBuf. It never blocks and never copies: when data doesn't yet hold a
// full frame it returns consumed == 0 so the caller can wait for more bytes
// to arrive on the next readiness notification.
//
// On success, payload aliases a sub-slice of data; callers that need the
// bytes to outlive the next buffer write must take a buf.Slice over that
// range before the backing AppendBuf is reused.
func TryParse(data []byte, negotiatedMaxLen uint32) (h Header, payload Payload, consumed int, err error) {
	if len(data) < HeaderLen {
		return Header{}, nil, 0, nil
	}

	h = ParseHeader(data[:HeaderLen])
	h.MaxLen = negotiatedMaxLen

	if err = h.CheckLen(); err != nil {
		return h, nil, 0, err
	}

	total := HeaderLen + int(h.Length)
	if len(data) < total {
		return Header{}, nil, 0, nil
	}

	raw := data[HeaderLen:total]

	p := NewPayload(h.Kind)
	if p == nil {
		p = &Unregistered{}
	}

	if err = p.Decode(&h, raw); err != nil {
		return h, nil, total, err
	}

	return h, p, total, nil
}

// Preface is the fixed 24-byte HTTP/2 connection preface that a client
// must send (and a server must verify) before any frames.
//
// https://httpwg.org/specs/rfc7540.html#ConnectionHeader
const Preface = "PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n"

// CheckPreface reports whether data begins with the connection preface,
// and if so, how many bytes it occupies.
func CheckPreface(data []byte) (ok bool, consumed int) {
	if len(data) < len(Preface) {
		return false, 0
	}
	return string(data[:len(Preface)]) == Preface, len(Preface)
}
