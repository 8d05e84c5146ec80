package transport

import (
	"context"
	"errors"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
)

// Transport errors.
var (
	// ErrConnectFailed indicates the device could not be reached or
	// refused the connection.
	ErrConnectFailed = errors.New("connect failed")

	// ErrClosed indicates the connection was closed.
	ErrClosed = errors.New("connection closed")
)

// Transport dials devices by BLE MAC address.
// Implemented by hci.Adapter.
type Transport interface {
	// Connect establishes a connection to the device. It blocks until
	// the link is up, the context is cancelled, or the attempt fails.
	Connect(ctx context.Context, mac adv.MAC) (Conn, error)
}

// Conn is one established BLE connection to a device.
type Conn interface {
	// Write sends raw bytes to the device's command characteristic.
	Write(ctx context.Context, data []byte) error

	// Notifications returns the stream of raw notification payloads
	// from the device. The channel is closed when the connection drops.
	Notifications() <-chan []byte

	// Close tears down the connection. Safe to call multiple times.
	Close() error
}

// Scanner observes device advertisements.
// Implemented by hci.Adapter.
type Scanner interface {
	// Scan invokes fn for every advertisement observed until the
	// context is cancelled. fn runs on the scanner's goroutine and
	// must not block.
	Scan(ctx context.Context, fn func(adv.Advertisement)) error
}
