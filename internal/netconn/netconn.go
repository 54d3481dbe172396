// Package netconn implements the per-client transport: a single-owner
// read half plus cloneable Sender write handles sharing one connection's
// compression and encryption state.
package netconn

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ironvein/blocksrv/internal/proto"
)

// ErrClosed names a closed connection. Neither Send nor ReadPacket
// returns it: a Send after Close returns nil without writing, and
// ReadPacket reports the socket's own read error.
var ErrClosed = errors.New("netconn: connection closed")

// shared holds everything a Connection's read half and its Senders must
// agree on: the live compression/encryption handlers and the single
// mutex guarding writes. Compression and encryption are enabled exactly
// once each, part-way through login, and never disabled again.
type shared struct {
	conn net.Conn

	mu     sync.Mutex // guards writer, closed; held only across one WriteFrame
	writer io.Writer  // conn, or conn wrapped in an encryption writer
	closed bool

	// reader is mutated only by the read half's own goroutine (EnableX is
	// only ever called from the packet-dispatch code that owns the read
	// loop), so it needs no lock.
	reader      io.Reader
	compression *proto.CompressionHandler

	latency time.Duration
}

// Connection is the read half: owned by exactly one goroutine, the
// connection's packet-dispatch loop.
type Connection struct {
	s     *shared
	frame *proto.FrameCodec
}

// Sender is a cloneable write handle. Any number of Senders may be held
// by background workers (broadcasters, keep-alive tickers); each Send
// call takes the shared lock only for the duration of the frame write.
type Sender struct {
	s *shared
}

// New wraps an accepted net.Conn as a fresh, unencrypted, uncompressed
// Connection plus its first Sender.
func New(conn net.Conn) (*Connection, *Sender) {
	s := &shared{conn: conn, writer: conn, reader: conn}
	c := &Connection{s: s, frame: proto.NewFrameCodec(s.reader)}
	return c, &Sender{s: s}
}

// NewSender returns another handle sharing this Connection's write state.
func (c *Connection) NewSender() *Sender { return &Sender{s: c.s} }

// EnableCompression switches both the read and write sides to
// threshold/level compression from this point in the stream onward. It
// must be called by the same goroutine driving ReadPacket, after any
// in-flight uncompressed frame has been fully consumed.
func (c *Connection) EnableCompression(h *proto.CompressionHandler) {
	c.s.mu.Lock()
	c.s.compression = h
	c.s.mu.Unlock()
}

// EnableEncryption switches both directions to AES-128-CFB8 from this
// point in the byte stream onward, per the critical invariant that
// encryption operates independent of frame boundaries. Must be called
// with no bytes of the next frame yet buffered.
func (c *Connection) EnableEncryption(h *proto.EncryptionHandler) {
	c.s.reader = h.WrapReader(c.s.reader)
	c.frame = proto.NewFrameCodec(c.s.reader)

	c.s.mu.Lock()
	c.s.writer = h.WrapWriter(c.s.writer)
	c.s.mu.Unlock()
}

// ReadPacket blocks until one framed, decompressed packet body is
// available, or returns an error (including io.EOF on orderly close).
func (c *Connection) ReadPacket() ([]byte, error) {
	body, err := c.frame.ReadFrame()
	if err != nil {
		return nil, err
	}
	c.s.mu.Lock()
	compression := c.s.compression
	c.s.mu.Unlock()
	if compression == nil {
		return body, nil
	}
	return compression.Unpack(body)
}

// Close closes the underlying socket. Safe to call more than once and
// from any goroutine; subsequent Sends become no-ops.
func (c *Connection) Close() error {
	c.s.mu.Lock()
	c.s.closed = true
	c.s.mu.Unlock()
	return c.s.conn.Close()
}

// RemoteAddr reports the peer address, for logging.
func (c *Connection) RemoteAddr() net.Addr { return c.s.conn.RemoteAddr() }

// RecordLatency stores a fresh keep-alive round-trip sample, read back
// by Latency for the tab list's periodic latency refresh.
func (c *Connection) RecordLatency(d time.Duration) {
	c.s.mu.Lock()
	c.s.latency = d
	c.s.mu.Unlock()
}

// Latency returns the most recent keep-alive round-trip sample, zero
// until the first one completes.
func (c *Connection) Latency() time.Duration {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.latency
}

// SetReadDeadline forwards to the underlying socket, letting a caller
// poll ReadPacket with a bounded wait instead of blocking forever — used
// by the configuration-stage quiescence timer and the play-stage
// keep-alive liveness check.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.s.conn.SetReadDeadline(t)
}

// Send compresses (if enabled) and writes one packet payload as a single
// frame, holding the shared lock only across the final write. A Send to
// a closed connection is a no-op, per the spec's "sends to a closed
// connection are no-ops" invariant.
func (s *Sender) Send(payload []byte) error {
	s.s.mu.Lock()
	defer s.s.mu.Unlock()
	if s.s.closed {
		return nil
	}

	body := payload
	if s.s.compression != nil {
		packed, err := s.s.compression.Pack(payload)
		if err != nil {
			return err
		}
		body = packed
	}
	return proto.WriteFrame(s.s.writer, body)
}
