package frame

import "fmt"

// GoAway carries the GOAWAY frame body.
//
// https://httpwg.org/specs/rfc7540.html#section-6.8
type GoAway struct {
	LastStreamID StreamID
	Code         ErrorCode
	Debug        []byte
}

func (ga *GoAway) Type() Type { return TypeGoAway }

func (ga *GoAway) Error() string {
	return fmt.Sprintf("goaway: last_stream=%d code=%s debug=%q", ga.LastStreamID, ga.Code, ga.Debug)
}

func (ga *GoAway) Decode(h *Header, payload []byte) error {
	if len(payload) < 8 {
		return ErrMissingBytes
	}
	ga.LastStreamID = StreamID(bytesToUint32(payload) & (1<<31 - 1))
	ga.Code = ErrorCode(bytesToUint32(payload[4:]))
	ga.Debug = payload[8:]
	return nil
}

func (ga *GoAway) Marshal(h *Header, dst []byte) []byte {
	dst = appendUint32Bytes(dst, uint32(ga.LastStreamID))
	dst = appendUint32Bytes(dst, uint32(ga.Code))
	return append(dst, ga.Debug...)
}
