package log

import (
	"testing"
	"time"

	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

func TestEncodeDecodeEvent(t *testing.T) {
	event := Event{
		Timestamp:    time.Now().Truncate(time.Millisecond),
		ConnectionID: "9f2c1a40-0000-4000-8000-000000000001",
		Direction:    DirectionOut,
		Layer:        LayerWire,
		Category:     CategoryCommand,
		DeviceAddr:   "C0:4B:2F:11:22:33",
		Model:        "Lock",
		Command: &CommandEvent{
			Subcommand:  0x0f,
			PayloadSize: 4,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.ConnectionID != event.ConnectionID {
		t.Errorf("ConnectionID: got %q, want %q", decoded.ConnectionID, event.ConnectionID)
	}
	if decoded.DeviceAddr != event.DeviceAddr {
		t.Errorf("DeviceAddr: got %q, want %q", decoded.DeviceAddr, event.DeviceAddr)
	}
	if decoded.Command == nil {
		t.Fatal("Command is nil")
	}
	if decoded.Command.Subcommand != 0x0f {
		t.Errorf("Subcommand: got 0x%02x, want 0x0f", decoded.Command.Subcommand)
	}
	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, event.Timestamp)
	}
}

func TestEncodeDecodeResponseEvent(t *testing.T) {
	event := Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Layer:        LayerWire,
		Category:     CategoryResponse,
		Response: &ResponseEvent{
			Status:      wire.StatusKeyMismatch,
			PayloadSize: 0,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Response == nil {
		t.Fatal("Response is nil")
	}
	if decoded.Response.Status != wire.StatusKeyMismatch {
		t.Errorf("Status: got %v, want %v", decoded.Response.Status, wire.StatusKeyMismatch)
	}
}

func TestEncodeOmitsEmptyFields(t *testing.T) {
	minimal := Event{
		Timestamp:    time.Now(),
		ConnectionID: "c",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryResponse,
	}
	full := minimal
	full.DeviceAddr = "C0:4B:2F:11:22:33"
	full.Model = "Curtain"
	full.Frame = &FrameEvent{Size: 20, Data: make([]byte, 20)}

	minData, err := EncodeEvent(minimal)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	fullData, err := EncodeEvent(full)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	if len(minData) >= len(fullData) {
		t.Errorf("minimal event (%d bytes) should encode smaller than full event (%d bytes)", len(minData), len(fullData))
	}
}
