package stream

import (
	"errors"
	"fmt"

	"github.com/nanoframe/h2reactor/frame"
)

// ConnError means the whole connection must be torn down with a GOAWAY.
// It is the Go equivalent of the Rust ConnectionError classification used
// by the original stream state machine.
type ConnError struct {
	Code frame.ErrorCode
	Msg  string
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("connection error: %s: %s", e.Code, e.Msg)
}

// StreamErr means only the offending stream must be reset with RST_STREAM;
// the connection otherwise continues normally.
type StreamErr struct {
	ID   ID
	Code frame.ErrorCode
	Msg  string
}

func (e *StreamErr) Error() string {
	return fmt.Sprintf("stream %d error: %s: %s", e.ID, e.Code, e.Msg)
}

func connErrorf(code frame.ErrorCode, format string, args ...interface{}) error {
	return &ConnError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func streamErrorf(id ID, code frame.ErrorCode, format string, args ...interface{}) error {
	return &StreamErr{ID: id, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// AsConnError reports whether err is (or wraps) a *ConnError.
func AsConnError(err error) (*ConnError, bool) {
	var ce *ConnError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// AsStreamErr reports whether err is (or wraps) a *StreamErr.
func AsStreamErr(err error) (*StreamErr, bool) {
	var se *StreamErr
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
