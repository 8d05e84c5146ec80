package wire

import (
	"errors"
	"fmt"
)

// Frame layout constants.
const (
	// Opcode is the leading byte of every Switchbot command.
	Opcode = 0x57

	// Subcommand families.
	SubcommandAct       = 0x01 // bot actuation
	SubcommandBasicInfo = 0x02 // basic settings query
	SubcommandSetMode   = 0x03 // bot mode change
	SubcommandExtended  = 0x0f // extended commands (curtain, lock)

	// MinResponseLength is the minimum valid response: one status byte.
	MinResponseLength = 1

	// MaxPayloadLength bounds a command payload. BLE writes to the tx
	// characteristic are limited to a single ATT packet.
	MaxPayloadLength = 18
)

// Codec errors.
var (
	// ErrProtocolMismatch indicates a response shorter than the model's
	// minimum length or with an impossible layout.
	ErrProtocolMismatch = errors.New("protocol mismatch")

	// ErrPayloadTooLarge indicates a command payload exceeding the ATT limit.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// CommandFrame is an outbound command. It is a pure value: the same
// frame always serializes to the same bytes.
type CommandFrame struct {
	Opcode     byte
	Subcommand byte
	Payload    []byte
}

// NewCommand builds a command frame with the standard opcode.
func NewCommand(subcommand byte, payload ...byte) CommandFrame {
	return CommandFrame{Opcode: Opcode, Subcommand: subcommand, Payload: payload}
}

// Bytes serializes the frame in wire order.
func (f CommandFrame) Bytes() []byte {
	out := make([]byte, 0, 2+len(f.Payload))
	out = append(out, f.Opcode, f.Subcommand)
	return append(out, f.Payload...)
}

// Validate checks frame bounds before transmission.
func (f CommandFrame) Validate() error {
	if len(f.Payload) > MaxPayloadLength {
		return fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(f.Payload), MaxPayloadLength)
	}
	return nil
}

// ParseFrame deserializes command bytes back into a frame.
// Used when opening an encrypted envelope around a command.
func ParseFrame(data []byte) (CommandFrame, error) {
	if len(data) < 2 {
		return CommandFrame{}, fmt.Errorf("%w: frame too short (%d bytes)", ErrProtocolMismatch, len(data))
	}
	f := CommandFrame{Opcode: data[0], Subcommand: data[1]}
	if len(data) > 2 {
		f.Payload = append([]byte(nil), data[2:]...)
	}
	return f, nil
}

// ResponseStatus is the first byte of every device response.
type ResponseStatus byte

const (
	// StatusOK indicates the command was accepted.
	StatusOK ResponseStatus = 0x01

	// StatusError indicates the device rejected the command.
	StatusError ResponseStatus = 0x02

	// StatusBusy indicates the device cannot take a command right now.
	StatusBusy ResponseStatus = 0x03

	// StatusVersionMismatch indicates a protocol version the device
	// does not speak.
	StatusVersionMismatch ResponseStatus = 0x04

	// StatusUnsupported indicates a command the device does not know.
	StatusUnsupported ResponseStatus = 0x05

	// StatusLowBattery indicates the device refused due to low battery.
	StatusLowBattery ResponseStatus = 0x06

	// StatusKeyRequired indicates the device is key-bearing and the
	// command arrived without an envelope.
	StatusKeyRequired ResponseStatus = 0x07

	// StatusKeyMismatch indicates the envelope key did not authenticate.
	StatusKeyMismatch ResponseStatus = 0x09
)

// String returns the status name.
func (s ResponseStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusBusy:
		return "BUSY"
	case StatusVersionMismatch:
		return "VERSION_MISMATCH"
	case StatusUnsupported:
		return "UNSUPPORTED"
	case StatusLowBattery:
		return "LOW_BATTERY"
	case StatusKeyRequired:
		return "KEY_REQUIRED"
	case StatusKeyMismatch:
		return "KEY_MISMATCH"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02x)", byte(s))
	}
}

// OK reports whether the status indicates strict acceptance.
func (s ResponseStatus) OK() bool {
	return s == StatusOK
}

// ActuationOK reports whether the status indicates a completed bot
// actuation. Bot firmware answers StatusUnsupported to press/on/off/arm
// commands in some modes while still moving the arm, so both count;
// everything else (mode changes, info queries) checks OK.
func (s ResponseStatus) ActuationOK() bool {
	return s == StatusOK || s == StatusUnsupported
}

// ResponseFrame is a decoded device notification.
type ResponseFrame struct {
	Status  ResponseStatus
	Payload []byte
}

// ParseResponse decodes raw notification bytes. The frame must carry at
// least the status byte; shorter input fails with ErrProtocolMismatch.
func ParseResponse(data []byte) (ResponseFrame, error) {
	if len(data) < MinResponseLength {
		return ResponseFrame{}, fmt.Errorf("%w: empty response", ErrProtocolMismatch)
	}
	r := ResponseFrame{Status: ResponseStatus(data[0])}
	if len(data) > 1 {
		r.Payload = append([]byte(nil), data[1:]...)
	}
	return r, nil
}
