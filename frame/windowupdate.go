package frame

// WindowUpdate carries the WINDOW_UPDATE frame body.
//
// https://httpwg.org/specs/rfc7540.html#section-6.9
type WindowUpdate struct {
	Increment uint32
}

func (wu *WindowUpdate) Type() Type { return TypeWindowUpdate }

func (wu *WindowUpdate) Decode(h *Header, payload []byte) error {
	if len(payload) < 4 {
		return ErrMissingBytes
	}
	wu.Increment = bytesToUint32(payload) & (1<<31 - 1)
	return nil
}

func (wu *WindowUpdate) Marshal(h *Header, dst []byte) []byte {
	return appendUint32Bytes(dst, wu.Increment)
}
