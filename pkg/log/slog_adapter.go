package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	// Add optional identifiers
	if event.DeviceAddr != "" {
		attrs = append(attrs, slog.String("device", event.DeviceAddr))
	}
	if event.Model != "" {
		attrs = append(attrs, slog.String("model", event.Model))
	}

	// Add type-specific attributes
	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Command != nil:
		attrs = append(attrs,
			slog.Uint64("subcommand", uint64(event.Command.Subcommand)),
			slog.Int("payload_size", event.Command.PayloadSize),
		)
	case event.Response != nil:
		attrs = append(attrs,
			slog.String("status", event.Response.Status.String()),
			slog.Int("payload_size", event.Response.PayloadSize),
		)
	case event.Envelope != nil:
		attrs = append(attrs,
			slog.Uint64("key_id", uint64(event.Envelope.KeyID)),
			slog.Int("ciphertext_size", event.Envelope.CiphertextSize),
		)
	case event.PhaseChange != nil:
		attrs = append(attrs,
			slog.String("old_phase", event.PhaseChange.OldPhase),
			slog.String("new_phase", event.PhaseChange.NewPhase),
		)
		if event.PhaseChange.Attempt > 0 {
			attrs = append(attrs, slog.Int("attempt", event.PhaseChange.Attempt))
		}
		if event.PhaseChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.PhaseChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
