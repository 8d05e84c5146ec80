package bletest

import (
	"context"
	"fmt"
	"sync"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport"
)

// ConnectOutcome scripts the behavior of one Connect attempt.
type ConnectOutcome int

const (
	// ConnectOK accepts the connection.
	ConnectOK ConnectOutcome = iota

	// ConnectRefuse fails the attempt immediately.
	ConnectRefuse

	// ConnectHang blocks until the caller's context expires.
	ConnectHang
)

// Handler turns a command write into zero or more notification replies.
type Handler func(cmd []byte) [][]byte

// StaticResponder replies to every write with the same notifications.
func StaticResponder(responses ...[]byte) Handler {
	return func([]byte) [][]byte { return responses }
}

// Silent never replies, forcing response timeouts.
func Silent() Handler {
	return func([]byte) [][]byte { return nil }
}

// Transport is a scripted transport.Transport. The zero value is not
// usable; use NewTransport.
type Transport struct {
	mu       sync.Mutex
	outcomes []ConnectOutcome
	handler  Handler
	conns    []*Conn
	attempts int
}

// NewTransport creates a transport that accepts every connection and
// never replies until a Handler is installed.
func NewTransport() *Transport {
	return &Transport{handler: Silent()}
}

// Script queues connect outcomes, consumed one per Connect call.
// Once the queue drains, attempts are accepted.
func (t *Transport) Script(outcomes ...ConnectOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes = append(t.outcomes, outcomes...)
}

// Handle installs the responder used by connections created afterwards.
func (t *Transport) Handle(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handler = h
}

// Connect consumes the next scripted outcome.
func (t *Transport) Connect(ctx context.Context, mac adv.MAC) (transport.Conn, error) {
	t.mu.Lock()
	t.attempts++
	outcome := ConnectOK
	if len(t.outcomes) > 0 {
		outcome = t.outcomes[0]
		t.outcomes = t.outcomes[1:]
	}
	handler := t.handler
	t.mu.Unlock()

	switch outcome {
	case ConnectRefuse:
		return nil, fmt.Errorf("%w: %s: scripted refusal", transport.ErrConnectFailed, mac)
	case ConnectHang:
		<-ctx.Done()
		return nil, ctx.Err()
	}

	c := newConn(mac, handler)
	t.mu.Lock()
	t.conns = append(t.conns, c)
	t.mu.Unlock()
	return c, nil
}

// ConnectCount returns how many Connect attempts reached the
// transport, including refused and hung ones.
func (t *Transport) ConnectCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts
}

// Conns returns every accepted connection in order.
func (t *Transport) Conns() []*Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Conn(nil), t.conns...)
}

// LastConn returns the most recently accepted connection, or nil.
func (t *Transport) LastConn() *Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.conns) == 0 {
		return nil
	}
	return t.conns[len(t.conns)-1]
}

// Compile-time interface satisfaction check.
var _ transport.Transport = (*Transport)(nil)
