// Package conn implements the per-connection pipeline: non-blocking reads
// into a zero-copy buffer, resumable frame parsing, per-stream state
// tracking, and a FIFO of pending outbound frame encoders flushed as the
// socket reports writable.
package conn

import (
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/nanoframe/h2reactor/frame"
	"github.com/nanoframe/h2reactor/internal/buf"
	"github.com/nanoframe/h2reactor/stream"
)

// Handler is invoked once a stream's request is fully received (headers,
// plus body if any, up through END_STREAM). It runs on the reactor thread;
// implementations that need to block must hand off to an Executor
// themselves.
type Handler interface {
	HandleRequest(c *Connection, s *stream.Stream)
}

// Options configures a Connection.
type Options struct {
	// ReadBufferSize sizes the AppendBuf used for incoming bytes.
	ReadBufferSize int
	// MaxConcurrentStreams bounds how many streams may be open at once.
	MaxConcurrentStreams uint32
	// MaxFrameSize is advertised to the peer and enforced on frames it
	// sends us.
	MaxFrameSize uint32
	// IdleTimeout is stored with the options but Connection itself never
	// acts on it: nothing here closes an idle connection. IdleFor reports
	// how long the connection has been idle.
	IdleTimeout time.Duration
	// Logger receives diagnostic messages; nil disables logging.
	Logger interface {
		Printf(format string, args ...interface{})
	}
}

func (o *Options) setDefaults() {
	if o.ReadBufferSize == 0 {
		o.ReadBufferSize = 1 << 16
	}
	if o.MaxConcurrentStreams == 0 {
		o.MaxConcurrentStreams = 1024
	}
	if o.MaxFrameSize == 0 {
		o.MaxFrameSize = 1 << 14
	}
}

// outbound is one queued frame awaiting flush, paired with a completion
// callback fired once it's fully written. If the connection dies first the
// entry is dropped and the callback is never called.
type outbound struct {
	enc  *frame.Encoder
	done func(c *Connection, err error)
}

// Connection holds all per-connection state driven by the reactor: the
// read buffer, the stream table, and the outbound queue. None of its
// methods are safe to call concurrently; the reactor guarantees each
// Connection is only ever touched from the single thread driving the event
// loop, per the Active-sentinel dispatch discipline in package reactor.
type Connection struct {
	netConn net.Conn
	handler Handler
	opts    Options

	rw ioReadWriter

	rbuf       *buf.AppendBuf
	consumePos int
	prefaceOK  bool
	streams    stream.Table
	lastID     stream.ID
	outQueue   []outbound
	closing    bool
	closed     int32

	// ClientSettings is the most recent SETTINGS the peer has sent us.
	ClientSettings frame.Settings
	// LocalSettings is what we've advertised to the peer.
	LocalSettings frame.Settings

	lastActivity time.Time

	// Data is an opaque slot for connection-scoped handler state — e.g.
	// a single HPACK encoder/decoder pair, whose dynamic table persists
	// for the life of the connection rather than per-stream the way
	// stream.Stream.Data does. The conn package never interprets it.
	Data interface{}
}

// New wraps c in a Connection ready to drive through Readable/Writable.
// The caller is expected to have already accepted c as an HTTP/2
// connection (e.g. via ALPN negotiation or prior knowledge).
func New(c net.Conn, h Handler, opts Options) *Connection {
	opts.setDefaults()

	conn := &Connection{
		netConn:      c,
		handler:      h,
		opts:         opts,
		rbuf:         buf.Acquire(opts.ReadBufferSize),
		lastActivity: time.Now(),
	}

	if fd, err := rawFD(c); err == nil {
		conn.rw = rawReadWriter{fd: fd}
	} else {
		// Degraded fallback for connection types that don't expose a raw
		// fd (e.g. net.Pipe in tests): falls back to c's own blocking
		// Read/Write, which works but forfeits the nonblocking
		// WouldBlock signaling the reactor relies on for backpressure.
		conn.rw = blockingReadWriter{c}
	}

	conn.LocalSettings.Set(frame.SettingMaxConcurrentStreams, opts.MaxConcurrentStreams)
	conn.LocalSettings.Set(frame.SettingMaxFrameSize, opts.MaxFrameSize)
	conn.LocalSettings.Set(frame.SettingInitialWindowSize, 1<<20)

	// RFC 7540 section 3.5: a server MUST send a SETTINGS frame as the
	// first frame of the connection, ahead of anything else queued.
	initial := &frame.Settings{Pairs: append([]frame.SettingPair(nil), conn.LocalSettings.Pairs...)}
	conn.enqueue(frame.Header{Kind: frame.TypeSettings}, initial, nil)

	return conn
}

// Closed reports whether the connection has been torn down.
func (c *Connection) Closed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// Close tears the connection down, releasing the read buffer. It is safe
// to call more than once.
func (c *Connection) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	// Any stream still tracked here (an abrupt teardown before its
	// END_STREAM/RST_STREAM) may be holding buf.Slices retained out of
	// rbuf or an already-compacted predecessor; release them so those
	// backing arrays can still return to the pool instead of leaking.
	c.streams.Each(func(s *stream.Stream) { s.ReleaseBuffers() })
	c.rbuf.Release()
	return c.netConn.Close()
}

// RemoteAddr reports the peer address, for logging.
func (c *Connection) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

func (c *Connection) logf(format string, args ...interface{}) {
	if c.opts.Logger != nil {
		c.opts.Logger.Printf(format, args...)
	}
}

// IdleFor reports how long it has been since any stream activity.
func (c *Connection) IdleFor() time.Duration {
	return time.Since(c.lastActivity)
}

// Fd reports the OS file descriptor backing this connection, or -1 if it
// was constructed over a transport with no raw fd (e.g. net.Pipe in
// tests), in which case it cannot be registered with an edge-triggered
// poller and must be driven directly by its caller.
func (c *Connection) Fd() int {
	if rw, ok := c.rw.(rawReadWriter); ok {
		return rw.fd
	}
	return -1
}

// OnReadable, OnWritable, and WantWrite satisfy reactor.Machine by
// structural typing: package reactor never imports package conn, so a
// Connection becomes pollable just by having these methods.
func (c *Connection) OnReadable() (keepAlive bool, err error) {
	if err := c.Readable(); err != nil {
		return false, err
	}
	return !c.Closed(), nil
}

func (c *Connection) OnWritable() (keepAlive bool, err error) {
	if err := c.Writable(); err != nil {
		return false, err
	}
	return !c.Closed(), nil
}

func (c *Connection) WantWrite() bool {
	return c.WritePending()
}

var errShortRead = errors.New("conn: socket would block")
