package frame

// Priority carries the PRIORITY frame body. It is legal on a stream in any
// state, including Idle and Closed.
//
// https://httpwg.org/specs/rfc7540.html#section-6.3
type Priority struct {
	Dependency StreamID
	Weight     uint8
}

func (p *Priority) Type() Type { return TypePriority }

func (p *Priority) Decode(h *Header, payload []byte) error {
	if len(payload) < 5 {
		return ErrMissingBytes
	}
	p.Dependency = StreamID(bytesToUint32(payload) & (1<<31 - 1))
	p.Weight = payload[4]
	return nil
}

func (p *Priority) Marshal(h *Header, dst []byte) []byte {
	dst = appendUint32Bytes(dst, uint32(p.Dependency))
	return append(dst, p.Weight)
}
