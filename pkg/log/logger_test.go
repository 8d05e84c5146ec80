package log

import (
	"log/slog"
	"sync"
	"testing"
	"time"
)

// collectLogger records events for test assertions.
type collectLogger struct {
	mu     sync.Mutex
	events []Event
}

func (c *collectLogger) Log(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *collectLogger) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestNoopLoggerDiscards(t *testing.T) {
	// Must not panic on any event shape.
	var l NoopLogger
	l.Log(Event{})
	l.Log(Event{Frame: &FrameEvent{Size: 1}})
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}

	c := &collectLogger{}
	if OrNoop(c) != Logger(c) {
		t.Error("OrNoop should pass through non-nil loggers")
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &collectLogger{}
	b := &collectLogger{}
	m := NewMultiLogger(a, b)

	m.Log(Event{Timestamp: time.Now(), ConnectionID: "x"})
	m.Log(Event{Timestamp: time.Now(), ConnectionID: "y"})

	if a.count() != 2 || b.count() != 2 {
		t.Errorf("fan-out counts: a=%d b=%d, want 2 each", a.count(), b.count())
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	// No loggers configured is legal.
	NewMultiLogger().Log(Event{})
}

func TestSlogAdapterAllEventShapes(t *testing.T) {
	adapter := NewSlogAdapter(slog.Default())

	// Must not panic for any populated sub-event.
	events := []Event{
		{Frame: &FrameEvent{Size: 20, Data: []byte{0x57}, Truncated: true}},
		{Command: &CommandEvent{Subcommand: 0x01, PayloadSize: 1}},
		{Response: &ResponseEvent{Status: 0x01, PayloadSize: 2}},
		{Envelope: &EnvelopeEvent{KeyID: 0x0f, CiphertextSize: 3}},
		{PhaseChange: &PhaseChangeEvent{OldPhase: "Connecting", NewPhase: "Connected", Attempt: 2, Reason: "retry"}},
		{Error: &ErrorEventData{Layer: LayerSession, Message: "timeout", Context: "connect"}},
		{},
	}
	for _, e := range events {
		e.Timestamp = time.Now()
		adapter.Log(e)
	}
}
