package frame

// Headers carries the HEADERS frame body: an optional priority prefix
// followed by a header-block fragment.
//
// Flags: END_STREAM, END_HEADERS, PADDED, PRIORITY.
//
// https://httpwg.org/specs/rfc7540.html#section-6.2
type Headers struct {
	EndStream  bool
	EndHeaders bool
	Padded     bool
	HasPriority bool
	Dependency StreamID
	Weight     uint8
	Block      []byte

	// Pad, when non-zero on encode, requests that many zero bytes of
	// PADDED padding after Block, mirroring Data.Pad.
	Pad int
}

// RandomPad sets Pad to a random length in the same range the teacher's
// AddPadding used.
func (h *Headers) RandomPad() { h.Pad = randomPadLen() }

func (h *Headers) Type() Type { return TypeHeaders }

func (h *Headers) HeaderBlock() []byte { return h.Block }

func (h *Headers) Decode(frh *Header, payload []byte) error {
	var err error
	if frh.Flags.Has(FlagPadded) {
		payload, err = cutPadding(payload)
		if err != nil {
			return err
		}
	}

	if frh.Flags.Has(FlagPriority) {
		if len(payload) < 5 {
			return ErrMissingBytes
		}
		h.HasPriority = true
		h.Dependency = StreamID(bytesToUint32(payload) & (1<<31 - 1))
		h.Weight = payload[4]
		payload = payload[5:]
	}

	h.EndStream = frh.Flags.Has(FlagEndStream)
	h.EndHeaders = frh.Flags.Has(FlagEndHeaders)
	h.Padded = frh.Flags.Has(FlagPadded)
	h.Block = payload

	return nil
}

func (h *Headers) Marshal(frh *Header, dst []byte) []byte {
	if h.EndStream {
		frh.Flags = frh.Flags.Add(FlagEndStream)
	}
	if h.EndHeaders {
		frh.Flags = frh.Flags.Add(FlagEndHeaders)
	}

	if h.Pad > 0 {
		frh.Flags = frh.Flags.Add(FlagPadded)
		dst = append(dst, byte(h.Pad))
	}

	if h.HasPriority {
		frh.Flags = frh.Flags.Add(FlagPriority)
		dst = appendUint32Bytes(dst, uint32(h.Dependency))
		dst = append(dst, h.Weight)
	}

	dst = append(dst, h.Block...)

	for i := 0; i < h.Pad; i++ {
		dst = append(dst, 0)
	}
	return dst
}
