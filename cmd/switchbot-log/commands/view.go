// Package commands implements the switchbot-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/switchbot-protocol/switchbot-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer     *log.Layer
	Direction *log.Direction
	Category  *log.Category
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [conn:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)
	dir := event.Direction.String()

	var typeLabel string
	switch {
	case event.Frame != nil:
		typeLabel = "Frame"
	case event.Command != nil:
		typeLabel = "Command"
	case event.Response != nil:
		typeLabel = "Response"
	case event.Envelope != nil:
		typeLabel = "Envelope"
	case event.PhaseChange != nil:
		typeLabel = "Phase"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s\n", ts, connID, dir, event.Layer, typeLabel)

	if event.DeviceAddr != "" {
		fmt.Fprintf(w, "  Device: %s", event.DeviceAddr)
		if event.Model != "" {
			fmt.Fprintf(w, " (%s)", event.Model)
		}
		fmt.Fprintln(w)
	}

	// Type-specific details
	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.Command != nil:
		formatCommandDetails(w, event.Command)
	case event.Response != nil:
		formatResponseDetails(w, event.Response)
	case event.Envelope != nil:
		formatEnvelopeDetails(w, event.Envelope)
	case event.PhaseChange != nil:
		formatPhaseChangeDetails(w, event.PhaseChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatFrameDetails writes frame-specific details.
func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
		if frame.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
}

// formatCommandDetails writes decoded command details.
func formatCommandDetails(w io.Writer, cmd *log.CommandEvent) {
	fmt.Fprintf(w, "  Subcommand: 0x%02x\n", cmd.Subcommand)
	fmt.Fprintf(w, "  PayloadSize: %d\n", cmd.PayloadSize)
}

// formatResponseDetails writes decoded response details.
func formatResponseDetails(w io.Writer, resp *log.ResponseEvent) {
	fmt.Fprintf(w, "  Status: %s (0x%02x)\n", resp.Status, uint8(resp.Status))
	fmt.Fprintf(w, "  PayloadSize: %d\n", resp.PayloadSize)
}

// formatEnvelopeDetails writes envelope metadata.
func formatEnvelopeDetails(w io.Writer, e *log.EnvelopeEvent) {
	fmt.Fprintf(w, "  KeyID: 0x%02x\n", e.KeyID)
	fmt.Fprintf(w, "  CiphertextSize: %d\n", e.CiphertextSize)
}

// formatPhaseChangeDetails writes session phase transition details.
func formatPhaseChangeDetails(w io.Writer, pc *log.PhaseChangeEvent) {
	if pc.OldPhase != "" {
		fmt.Fprintf(w, "  %s -> %s\n", pc.OldPhase, pc.NewPhase)
	} else {
		fmt.Fprintf(w, "  -> %s\n", pc.NewPhase)
	}
	if pc.Attempt > 0 {
		fmt.Fprintf(w, "  Attempt: %d\n", pc.Attempt)
	}
	if pc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", pc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseLayerFlag parses a layer string from command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	return parseLayer(s)
}

// parseLayer parses a layer string (case-insensitive).
func parseLayer(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "session":
		return log.LayerSession, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, wire, or session)", s)
	}
}

// ParseDirectionFlag parses a direction string from command-line flag (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	return parseDirection(s)
}

// parseDirection parses a direction string (case-insensitive).
func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "command":
		return log.CategoryCommand, nil
	case "response":
		return log.CategoryResponse, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be command, response, state, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		if filter.Layer != nil && event.Layer != *filter.Layer {
			continue
		}
		if filter.Direction != nil && event.Direction != *filter.Direction {
			continue
		}
		if filter.Category != nil && event.Category != *filter.Category {
			continue
		}

		formatEvent(output, event)
	}

	return nil
}
