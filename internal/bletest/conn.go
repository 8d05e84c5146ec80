package bletest

import (
	"context"
	"sync"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport"
)

// Conn is one scripted connection. It records writes and replies via
// the transport's Handler.
type Conn struct {
	mac           adv.MAC
	handler       Handler
	notifications chan []byte

	mu     sync.Mutex
	writes [][]byte
	closed bool
}

func newConn(mac adv.MAC, handler Handler) *Conn {
	return &Conn{
		mac:           mac,
		handler:       handler,
		notifications: make(chan []byte, 16),
	}
}

// Write records the bytes and pushes the handler's replies as
// notifications.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return transport.ErrClosed
	}
	c.writes = append(c.writes, append([]byte(nil), data...))
	c.mu.Unlock()

	for _, reply := range c.handler(data) {
		c.Push(reply)
	}
	return nil
}

// Push injects a notification, e.g. a stray frame from a previous
// exchange. Dropped silently after Close.
func (c *Conn) Push(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.notifications <- append([]byte(nil), data...):
	default:
	}
}

// Notifications returns the notification stream.
func (c *Conn) Notifications() <-chan []byte {
	return c.notifications
}

// Close closes the notification channel. Safe to call multiple times.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.notifications)
	return nil
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Writes returns every recorded write in order.
func (c *Conn) Writes() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.writes))
	for i, w := range c.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// MAC returns the address this connection was dialed with.
func (c *Conn) MAC() adv.MAC {
	return c.mac
}

// Compile-time interface satisfaction check.
var _ transport.Conn = (*Conn)(nil)
