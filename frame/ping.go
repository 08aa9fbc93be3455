package frame

// Ping carries the PING frame body: 8 opaque bytes echoed back by the peer.
//
// https://httpwg.org/specs/rfc7540.html#section-6.7
type Ping struct {
	Ack  bool
	Data [8]byte
}

func (p *Ping) Type() Type { return TypePing }

func (p *Ping) Decode(h *Header, payload []byte) error {
	if len(payload) != 8 {
		return ErrMissingBytes
	}
	p.Ack = h.Flags.Has(FlagAck)
	copy(p.Data[:], payload)
	return nil
}

func (p *Ping) Marshal(h *Header, dst []byte) []byte {
	if p.Ack {
		h.Flags = h.Flags.Add(FlagAck)
	}
	return append(dst, p.Data[:]...)
}
