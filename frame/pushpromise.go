package frame

// PushPromise carries the PUSH_PROMISE frame body.
//
// https://httpwg.org/specs/rfc7540.html#section-6.6
type PushPromise struct {
	Padded       bool
	EndHeaders   bool
	PromisedID   StreamID
	Block        []byte
}

func (pp *PushPromise) Type() Type { return TypePushPromise }

func (pp *PushPromise) HeaderBlock() []byte { return pp.Block }

func (pp *PushPromise) Decode(h *Header, payload []byte) error {
	var err error
	if h.Flags.Has(FlagPadded) {
		payload, err = cutPadding(payload)
		if err != nil {
			return err
		}
	}

	if len(payload) < 4 {
		return ErrMissingBytes
	}

	pp.Padded = h.Flags.Has(FlagPadded)
	pp.EndHeaders = h.Flags.Has(FlagEndHeaders)
	pp.PromisedID = StreamID(bytesToUint32(payload) & (1<<31 - 1))
	pp.Block = payload[4:]

	return nil
}

func (pp *PushPromise) Marshal(h *Header, dst []byte) []byte {
	if pp.EndHeaders {
		h.Flags = h.Flags.Add(FlagEndHeaders)
	}
	dst = appendUint32Bytes(dst, uint32(pp.PromisedID))
	return append(dst, pp.Block...)
}
