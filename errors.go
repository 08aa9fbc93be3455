package h2reactor

import (
	"github.com/nanoframe/h2reactor/frame"
	"github.com/nanoframe/h2reactor/reactor"
	"github.com/nanoframe/h2reactor/stream"
)

// StreamError and ConnectionError alias the stream package's RFC 7540
// error classification at the root so callers of Handler/ResponseWriter
// don't need to import package stream just to type-switch on a failure
// surfaced through this package's public API.
type StreamError = stream.StreamErr
type ConnectionError = stream.ConnError

// AsStreamError and AsConnectionError forward to their stream package
// equivalents, named to match this package's exported error types.
func AsStreamError(err error) (*StreamError, bool) { return stream.AsStreamErr(err) }
func AsConnectionError(err error) (*ConnectionError, bool) { return stream.AsConnError(err) }

// ErrBadPreface is returned when a connection's first bytes don't match the
// HTTP/2 client connection preface.
var ErrBadPreface = frame.ErrBadPreface

// ErrShutdown is returned by Handle methods once the reactor has been told
// to shut down and is no longer accepting work.
var ErrShutdown = reactor.ErrShutdown
