package frame

import "github.com/valyala/fastrand"

// randomPadLen picks a random PADDED byte count the same way
// http2utils.AddPadding did in the teacher's codec: a value in [9, 255],
// comfortably under the one-byte pad-length field's 255 ceiling while
// still large enough to be a meaningful length-hiding padding.
func randomPadLen() int {
	return int(fastrand.Uint32n(256-9)) + 9
}

// appendPadding appends to dst a PADDED payload: a one-byte pad length
// followed by body and padLen zero bytes. The caller sets FlagPadded on
// the frame header itself.
func appendPadding(dst []byte, body []byte, padLen int) []byte {
	dst = append(dst, byte(padLen))
	dst = append(dst, body...)
	for i := 0; i < padLen; i++ {
		dst = append(dst, 0)
	}
	return dst
}
