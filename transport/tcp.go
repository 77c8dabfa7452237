// Package transport provides an optional TCP shell around client.Client.
// It is never imported by the resp or client packages — the core is
// transport-agnostic by design — but most programs need some socket
// wiring, and this is one concrete, reusable way to provide it.
package transport

import (
	"context"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/aravinth/respwire/client"
)

// Config controls how Conn dials and reconnects.
type Config struct {
	Addr string

	// DialTimeout bounds a single connection attempt. Zero means 5s.
	DialTimeout time.Duration

	// InitialBackoff and MaxBackoff bound the reconnect delay, which
	// doubles after each failed attempt. Zero means 1s / 30s.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// ReadBufferSize is the size of the chunk read from the socket per
	// call to Client.Feed. Zero means 4096.
	ReadBufferSize int
}

func (c Config) withDefaults() Config {
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = 4096
	}
	return c
}

// Conn dials Addr and feeds inbound bytes to a client.Client, reconnecting
// with exponential backoff on failure. It runs its read loop in a single
// background goroutine, the way SlaveState.run dials a master and
// reconnects on stream error — generalized from "replica syncing with one
// master" to "client library talking to any RESP server," with the
// PSYNC/REPLCONF handshake dropped since there is no replication protocol
// here.
type Conn struct {
	cfg Config

	mu        sync.Mutex
	conn      net.Conn
	connected bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewConn prepares a TCP shell for cfg.Addr without connecting yet. Pass
// its WriteFunc to client.NewClient, then pass the resulting Client to
// Start — this two-step construction exists because the Client needs the
// Conn's write callback before the Conn has anything to dial for.
func NewConn(cfg Config) *Conn {
	return &Conn{cfg: cfg.withDefaults()}
}

// Start begins connecting to cfg.Addr in the background and returns
// immediately. Inbound bytes are handed to rc.Feed as they arrive.
func (c *Conn) Start(rc *client.Client) {
	c.mu.Lock()
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.done = make(chan struct{})
	c.mu.Unlock()
	go c.run(rc)
}

// IsConnected reports whether the socket is currently established.
func (c *Conn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close stops reconnection attempts and closes the current connection, if
// any. It blocks until the read loop has exited.
func (c *Conn) Close() {
	c.cancel()
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.mu.Unlock()
	<-c.done
}

func (c *Conn) run(rc *client.Client) {
	defer close(c.done)
	backoff := c.cfg.InitialBackoff

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		conn, err := net.DialTimeout("tcp", c.cfg.Addr, c.cfg.DialTimeout)
		if err != nil {
			log.Printf("transport: dial %s failed: %v, retrying in %v", c.cfg.Addr, err, backoff)
			select {
			case <-time.After(backoff):
			case <-c.ctx.Done():
				return
			}
			backoff = minDuration(backoff*2, c.cfg.MaxBackoff)
			continue
		}

		backoff = c.cfg.InitialBackoff

		c.mu.Lock()
		if c.ctx.Err() != nil {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.connected = true
		c.mu.Unlock()

		log.Printf("transport: connected to %s", c.cfg.Addr)

		if err := c.readLoop(conn, rc); err != nil && err != io.EOF {
			log.Printf("transport: read loop for %s ended: %v", c.cfg.Addr, err)
		}

		c.mu.Lock()
		c.conn = nil
		c.connected = false
		c.mu.Unlock()
		conn.Close()

		select {
		case <-c.ctx.Done():
			return
		default:
		}
	}
}

func (c *Conn) readLoop(conn net.Conn, rc *client.Client) error {
	buf := make([]byte, c.cfg.ReadBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			rc.Feed(buf[:n])
		}
		if err != nil {
			return err
		}
		if rc.Poisoned() {
			return io.EOF
		}
	}
}

// WriteFunc returns a client.WriteFunc that writes to this Conn's current
// socket, suitable for passing to client.NewClient. Writes while
// disconnected are logged and dropped rather than blocking — the same
// best-effort policy spec.md leaves to "the surrounding shell."
func (c *Conn) WriteFunc() client.WriteFunc {
	return func(b []byte) {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			log.Printf("transport: dropped %d bytes, not connected", len(b))
			return
		}
		if _, err := conn.Write(b); err != nil {
			log.Printf("transport: write to %s failed: %v", c.cfg.Addr, err)
		}
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
