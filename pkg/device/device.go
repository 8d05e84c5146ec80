package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/envelope"
	"github.com/switchbot-protocol/switchbot-go/pkg/log"
	"github.com/switchbot-protocol/switchbot-go/pkg/session"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport"
	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

// Facade errors.
var (
	// ErrUnsupportedOperation indicates the model cannot perform the
	// requested operation. Returned before any transport I/O.
	ErrUnsupportedOperation = errors.New("operation not supported by model")

	// ErrKeyRequired indicates a key-bearing facade was constructed
	// without an encryption key.
	ErrKeyRequired = errors.New("encryption key required")

	// ErrDeviceBusy indicates the device rejected the command because
	// another operation is in progress on the device itself.
	ErrDeviceBusy = errors.New("device busy")

	// ErrDescriptorMismatch indicates an advertisement snapshot for a
	// different device was offered to a facade.
	ErrDescriptorMismatch = errors.New("descriptor does not match device")
)

// CommandError is returned when the device answers with a status this
// package has no dedicated error for.
type CommandError struct {
	// Status is the device's response status byte.
	Status wire.ResponseStatus
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return fmt.Sprintf("device returned %s", e.Status)
}

// Options configures a facade.
type Options struct {
	// Session holds timing and retry parameters.
	Session session.Config

	// Logger receives protocol events. Nil disables logging.
	Logger log.Logger
}

// device is the base embedded by every facade.
type device struct {
	mac     adv.MAC
	model   wire.Model
	session *session.Session
	logger  log.Logger

	mu   sync.Mutex
	desc *adv.DeviceDescriptor
}

func newDevice(t transport.Transport, mac adv.MAC, model wire.Model, opts Options) device {
	logger := log.OrNoop(opts.Logger)
	return device{
		mac:     mac,
		model:   model,
		session: session.New(t, mac, opts.Session, logger),
		logger:  logger,
	}
}

// MAC returns the device address.
func (d *device) MAC() adv.MAC {
	return d.mac
}

// Model returns the device model family.
func (d *device) Model() wire.Model {
	return d.model
}

// Release closes the BLE link. The facade stays usable; the next
// operation reconnects.
func (d *device) Release() error {
	return d.session.Release()
}

// UpdateFromAdvertisement replaces the cached advertisement snapshot.
// The descriptor must belong to this device.
func (d *device) UpdateFromAdvertisement(desc adv.DeviceDescriptor) error {
	if desc.MAC != d.mac {
		return fmt.Errorf("%w: advertisement from %s", ErrDescriptorMismatch, desc.MAC)
	}
	if desc.Model != wire.ModelUnknown && desc.Model != d.model {
		return fmt.Errorf("%w: advertisement model %s", ErrDescriptorMismatch, desc.Model)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.desc = &desc
	return nil
}

// Descriptor returns the latest advertisement snapshot, if any.
func (d *device) Descriptor() (adv.DeviceDescriptor, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.desc == nil {
		return adv.DeviceDescriptor{}, false
	}
	return *d.desc, true
}

// require fails with ErrUnsupportedOperation when the model lacks a
// capability. Called before any frame is built.
func (d *device) require(c wire.Capability) error {
	if !d.model.Capabilities().Has(c) {
		return fmt.Errorf("%w: model %s", ErrUnsupportedOperation, d.model)
	}
	return nil
}

// exchange runs one plaintext command round trip and maps the
// response status.
func (d *device) exchange(ctx context.Context, frame wire.CommandFrame) (wire.ResponseFrame, error) {
	if err := frame.Validate(); err != nil {
		return wire.ResponseFrame{}, err
	}
	d.logCommand(frame)

	raw, err := d.session.Execute(ctx, frame.Bytes())
	if err != nil {
		return wire.ResponseFrame{}, err
	}

	resp, err := wire.ParseResponse(raw)
	if err != nil {
		return wire.ResponseFrame{}, err
	}
	d.logResponse(resp)
	return resp, statusError(resp.Status)
}

// statusError maps a response status to the facade's error vocabulary.
func statusError(status wire.ResponseStatus) error {
	switch status {
	case wire.StatusBusy:
		return ErrDeviceBusy
	case wire.StatusKeyRequired, wire.StatusKeyMismatch:
		// Terminal: retrying with the same key cannot succeed.
		return fmt.Errorf("%w: device status %s", envelope.ErrAuthenticationFailed, status)
	default:
		if status.OK() {
			return nil
		}
		return &CommandError{Status: status}
	}
}

func (d *device) logCommand(frame wire.CommandFrame) {
	d.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: d.session.ID(),
		Direction:    log.DirectionOut,
		Layer:        log.LayerWire,
		Category:     log.CategoryCommand,
		DeviceAddr:   d.mac.String(),
		Model:        d.model.String(),
		Command:      &log.CommandEvent{Subcommand: frame.Subcommand, PayloadSize: len(frame.Payload)},
	})
}

func (d *device) logResponse(resp wire.ResponseFrame) {
	d.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: d.session.ID(),
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryResponse,
		DeviceAddr:   d.mac.String(),
		Model:        d.model.String(),
		Response:     &log.ResponseEvent{Status: resp.Status, PayloadSize: len(resp.Payload)},
	})
}
