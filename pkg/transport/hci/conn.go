package hci

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"tinygo.org/x/bluetooth"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/log"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport"
)

// notificationBuffer bounds how many undelivered notifications a
// connection holds before dropping new ones.
const notificationBuffer = 16

// conn is one live GATT connection.
type conn struct {
	id     string
	mac    adv.MAC
	device bluetooth.Device
	tx     bluetooth.DeviceCharacteristic
	logger log.Logger

	notifications chan []byte

	mu     sync.Mutex
	closed bool
}

// newConn discovers the vendor service and characteristics and
// subscribes to notifications.
func newConn(device bluetooth.Device, mac adv.MAC, logger log.Logger) (*conn, error) {
	services, err := device.DiscoverServices([]bluetooth.UUID{serviceUUID})
	if err != nil {
		return nil, fmt.Errorf("discover services: %w", err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("vendor service %s not found", serviceUUID)
	}

	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{commandCharUUID, dataCharUUID})
	if err != nil {
		return nil, fmt.Errorf("discover characteristics: %w", err)
	}
	if len(chars) < 2 {
		return nil, fmt.Errorf("expected 2 characteristics, found %d", len(chars))
	}

	c := &conn{
		id:            uuid.NewString(),
		mac:           mac,
		device:        device,
		tx:            chars[0],
		logger:        log.OrNoop(logger),
		notifications: make(chan []byte, notificationBuffer),
	}

	rx := chars[1]
	if err := rx.EnableNotifications(c.onNotify); err != nil {
		return nil, fmt.Errorf("enable notifications: %w", err)
	}
	return c, nil
}

// onNotify runs on the BLE stack's goroutine. The buffer is reused by
// the stack, so it is copied before handoff. A full channel drops the
// notification rather than stalling the radio.
func (c *conn) onNotify(buf []byte) {
	data := append([]byte(nil), buf...)

	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.id,
		Direction:    log.DirectionIn,
		Layer:        log.LayerTransport,
		Category:     log.CategoryResponse,
		DeviceAddr:   c.mac.String(),
		Frame:        &log.FrameEvent{Size: len(data), Data: data},
	})

	// The closed check and the send share the mutex so Close cannot
	// close the channel between them.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.notifications <- data:
	default:
	}
}

// Write sends raw bytes to the command characteristic.
func (c *conn) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return transport.ErrClosed
	}

	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.id,
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransport,
		Category:     log.CategoryCommand,
		DeviceAddr:   c.mac.String(),
		Frame:        &log.FrameEvent{Size: len(data), Data: append([]byte(nil), data...)},
	})

	if _, err := c.tx.WriteWithoutResponse(data); err != nil {
		return fmt.Errorf("characteristic write: %w", err)
	}
	return nil
}

// Notifications returns the device's notification stream.
func (c *conn) Notifications() <-chan []byte {
	return c.notifications
}

// Close disconnects and closes the notification channel.
func (c *conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.notifications)
	c.mu.Unlock()

	return c.device.Disconnect()
}

// Compile-time interface satisfaction check.
var _ transport.Conn = (*conn)(nil)
