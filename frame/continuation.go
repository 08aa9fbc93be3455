package frame

// Continuation carries the CONTINUATION frame body: the remainder of a
// header block that didn't fit in the preceding HEADERS or PUSH_PROMISE
// frame.
//
// https://httpwg.org/specs/rfc7540.html#section-6.10
type Continuation struct {
	EndHeaders bool
	Block      []byte
}

func (c *Continuation) Type() Type { return TypeContinuation }

func (c *Continuation) HeaderBlock() []byte { return c.Block }

func (c *Continuation) Decode(h *Header, payload []byte) error {
	c.EndHeaders = h.Flags.Has(FlagEndHeaders)
	c.Block = payload
	return nil
}

func (c *Continuation) Marshal(h *Header, dst []byte) []byte {
	if c.EndHeaders {
		h.Flags = h.Flags.Add(FlagEndHeaders)
	}
	return append(dst, c.Block...)
}

// Unregistered holds the raw payload of a frame kind this runtime doesn't
// recognize. Per RFC 7540 section 4.1, unknown frame types and flags MUST
// be ignored rather than rejected.
type Unregistered struct {
	Kind  Type
	Bytes []byte
}

func (u *Unregistered) Type() Type { return u.Kind }

func (u *Unregistered) Decode(h *Header, payload []byte) error {
	u.Kind = h.Kind
	u.Bytes = payload
	return nil
}

func (u *Unregistered) Marshal(h *Header, dst []byte) []byte {
	return append(dst, u.Bytes...)
}
