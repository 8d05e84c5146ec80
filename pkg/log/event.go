package log

import (
	"time"

	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the BLE connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// DeviceAddr is the peer's BLE MAC address.
	DeviceAddr string `cbor:"6,keyasint,omitempty"`

	// Model is the device model name (populated once known).
	Model string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"8,keyasint,omitempty"`  // Transport layer (raw GATT bytes)
	Command     *CommandEvent     `cbor:"9,keyasint,omitempty"`  // Wire layer (outgoing, decoded)
	Response    *ResponseEvent    `cbor:"10,keyasint,omitempty"` // Wire layer (incoming, decoded)
	Envelope    *EnvelopeEvent    `cbor:"11,keyasint,omitempty"` // Encryption envelope metadata
	PhaseChange *PhaseChangeEvent `cbor:"12,keyasint,omitempty"` // Session lifecycle
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming notification.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing write.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the GATT characteristic layer (raw bytes).
	LayerTransport Layer = 0
	// LayerWire is the command/response encoding layer.
	LayerWire Layer = 1
	// LayerSession is the connection and retry state machine.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCommand indicates an outgoing command frame.
	CategoryCommand Category = 0
	// CategoryResponse indicates an incoming response frame.
	CategoryResponse Category = 1
	// CategoryState indicates a session phase change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCommand:
		return "COMMAND"
	case CategoryResponse:
		return "RESPONSE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw bytes crossing the GATT boundary.
type FrameEvent struct {
	// Size is the write or notification size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw bytes (may be truncated for large frames, and is
	// ciphertext for encrypted devices).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// CommandEvent captures a decoded outgoing command at the wire layer.
type CommandEvent struct {
	// Subcommand selects the device operation family.
	Subcommand uint8 `cbor:"1,keyasint"`

	// PayloadSize is the command payload length in bytes. The payload
	// itself is not logged; for encrypted devices it may carry secrets.
	PayloadSize int `cbor:"2,keyasint"`
}

// ResponseEvent captures a decoded incoming response at the wire layer.
type ResponseEvent struct {
	// Status is the device's response status byte.
	Status wire.ResponseStatus `cbor:"1,keyasint"`

	// PayloadSize is the response payload length in bytes.
	PayloadSize int `cbor:"2,keyasint"`
}

// EnvelopeEvent captures encryption envelope metadata. Neither the IV
// nor the ciphertext is recorded.
type EnvelopeEvent struct {
	// KeyID is the key slot the envelope was sealed under.
	KeyID uint8 `cbor:"1,keyasint"`

	// CiphertextSize is the encrypted payload length in bytes.
	CiphertextSize int `cbor:"2,keyasint"`
}

// PhaseChangeEvent captures session lifecycle transitions.
type PhaseChangeEvent struct {
	// OldPhase is the previous phase (may be empty).
	OldPhase string `cbor:"1,keyasint,omitempty"`

	// NewPhase is the new phase.
	NewPhase string `cbor:"2,keyasint"`

	// Attempt is the 1-based attempt number for retry transitions.
	Attempt int `cbor:"3,keyasint,omitempty"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
