package frame

// Data carries the DATA frame body.
//
// Flags: END_STREAM, PADDED.
//
// https://httpwg.org/specs/rfc7540.html#section-6.1
type Data struct {
	EndStream bool
	Padded    bool
	Bytes     []byte

	// Pad, when non-zero on encode, requests that many zero bytes of
	// PADDED padding be appended. RandomPad sets it to a teacher-style
	// random length instead of a caller-chosen one. Decode never sets
	// this; inspect Padded/Bytes for the already-stripped wire form.
	Pad int
}

// RandomPad sets Pad to a random length in the same range the teacher's
// AddPadding used, for callers that want length-hiding without picking a
// size themselves.
func (d *Data) RandomPad() { d.Pad = randomPadLen() }

func (d *Data) Type() Type { return TypeData }

func (d *Data) Decode(h *Header, payload []byte) error {
	var err error
	if h.Flags.Has(FlagPadded) {
		payload, err = cutPadding(payload)
		if err != nil {
			return err
		}
	}

	d.EndStream = h.Flags.Has(FlagEndStream)
	d.Padded = h.Flags.Has(FlagPadded)
	d.Bytes = payload

	return nil
}

func (d *Data) Marshal(h *Header, dst []byte) []byte {
	if d.EndStream {
		h.Flags = h.Flags.Add(FlagEndStream)
	}
	if d.Pad > 0 {
		h.Flags = h.Flags.Add(FlagPadded)
		return appendPadding(dst, d.Bytes, d.Pad)
	}
	return append(dst, d.Bytes...)
}
