// Package h2reactor implements the connection-level surface of an HTTP/2
// server runtime: a single-threaded, edge-triggered reactor drives zero-copy
// frame parsing and per-stream state tracking, and hands finished requests
// to a pluggable Handler. Work that would block — request handling itself,
// mostly — is expected to run through an injected Executor rather than on
// the reactor thread.
//
// See the frame, stream, conn, reactor and acceptor subpackages for the
// wire codec, the RFC 7540 state machine, the per-connection pipeline, the
// event loop, and the listener driving it.
package h2reactor
