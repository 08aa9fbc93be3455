package frame

// RstStream carries the RST_STREAM frame body.
//
// https://httpwg.org/specs/rfc7540.html#section-6.4
type RstStream struct {
	Code ErrorCode
}

func (r *RstStream) Type() Type { return TypeRstStream }

func (r *RstStream) Decode(h *Header, payload []byte) error {
	if len(payload) < 4 {
		return ErrMissingBytes
	}
	r.Code = ErrorCode(bytesToUint32(payload))
	return nil
}

func (r *RstStream) Marshal(h *Header, dst []byte) []byte {
	return appendUint32Bytes(dst, uint32(r.Code))
}
