package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/log"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport"
)

// Config defaults.
const (
	// DefaultConnectTimeout bounds one connect attempt.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultResponseTimeout bounds the wait for a response notification.
	DefaultResponseTimeout = 5 * time.Second

	// DefaultMaxAttempts is the total number of connect+send attempts
	// per Execute call.
	DefaultMaxAttempts = 3
)

// Session errors.
var (
	// ErrConnectTimeout indicates a connect attempt exceeded ConnectTimeout.
	ErrConnectTimeout = errors.New("connect timeout")

	// ErrResponseTimeout indicates the device did not answer a command
	// within ResponseTimeout.
	ErrResponseTimeout = errors.New("response timeout")

	// ErrReleased indicates the session has been released.
	ErrReleased = errors.New("session released")
)

// RetriesExhaustedError is returned when every attempt of an Execute
// call failed. It wraps the last attempt's cause.
type RetriesExhaustedError struct {
	// Attempts is the number of attempts made.
	Attempts int

	// Cause is the error from the final attempt.
	Cause error
}

// Error implements the error interface.
func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Cause)
}

// Unwrap returns the final attempt's cause so errors.Is sees through
// the exhaustion wrapper.
func (e *RetriesExhaustedError) Unwrap() error {
	return e.Cause
}

// Config holds session timing and retry parameters.
// Zero values fall back to the package defaults.
type Config struct {
	// ConnectTimeout bounds each connect attempt.
	ConnectTimeout time.Duration

	// ResponseTimeout bounds the wait for each response notification.
	ResponseTimeout time.Duration

	// MaxAttempts is the total attempt budget per Execute call
	// (first try included).
	MaxAttempts int

	// RetryBackoff configures the delay between attempts.
	RetryBackoff BackoffConfig
}

// withDefaults fills in zero fields.
func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = DefaultResponseTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// Session drives one device's connection lifecycle. Safe for
// concurrent use: concurrent Execute calls queue and run one at a time.
type Session struct {
	transport transport.Transport
	mac       adv.MAC
	config    Config
	logger    log.Logger
	id        string

	// opMu serializes Execute calls. At most one command is
	// outstanding per device.
	opMu sync.Mutex

	mu       sync.Mutex
	phase    Phase
	conn     transport.Conn
	released bool
}

// New creates a session for the device at mac. Pass nil to disable
// logging.
func New(t transport.Transport, mac adv.MAC, cfg Config, logger log.Logger) *Session {
	return &Session{
		transport: t,
		mac:       mac,
		config:    cfg.withDefaults(),
		logger:    log.OrNoop(logger),
		id:        uuid.NewString(),
	}
}

// ID returns the session's connection id used in log events.
func (s *Session) ID() string {
	return s.id
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Execute writes payload to the device and returns the response
// notification. It establishes the link if needed and retries the
// whole connect+send sequence up to MaxAttempts times. On exhaustion
// it returns a *RetriesExhaustedError wrapping the last cause and
// leaves the session disconnected.
func (s *Session) Execute(ctx context.Context, payload []byte) ([]byte, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	released := s.released
	s.mu.Unlock()
	if released {
		return nil, ErrReleased
	}

	backoff := NewBackoffWithConfig(s.config.RetryBackoff)
	var lastErr error
	for attempt := 1; attempt <= s.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				s.dropConn(PhaseDisconnected, "cancelled", attempt)
				return nil, ctx.Err()
			case <-time.After(backoff.Next()):
			}
		}

		resp, err := s.attempt(ctx, payload, attempt)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// Parent cancellation ends the operation, not just the attempt.
		if ctx.Err() != nil {
			s.dropConn(PhaseDisconnected, "cancelled", attempt)
			return nil, err
		}

		s.dropConn(PhaseFailed, err.Error(), attempt)
		s.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: s.id,
			Direction:    log.DirectionOut,
			Layer:        log.LayerSession,
			Category:     log.CategoryError,
			DeviceAddr:   s.mac.String(),
			Error:        &log.ErrorEventData{Layer: log.LayerSession, Message: err.Error(), Context: fmt.Sprintf("attempt %d/%d", attempt, s.config.MaxAttempts)},
		})
	}

	s.setPhase(PhaseDisconnected, "retries exhausted", s.config.MaxAttempts)
	return nil, &RetriesExhaustedError{Attempts: s.config.MaxAttempts, Cause: lastErr}
}

// attempt runs one connect+write+await cycle.
func (s *Session) attempt(ctx context.Context, payload []byte, attempt int) ([]byte, error) {
	conn, err := s.ensureConnected(ctx, attempt)
	if err != nil {
		return nil, err
	}

	s.drainStray(conn)

	s.setPhase(PhaseAwaitingResponse, "", attempt)
	if err := conn.Write(ctx, payload); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	timer := time.NewTimer(s.config.ResponseTimeout)
	defer timer.Stop()
	select {
	case data, ok := <-conn.Notifications():
		if !ok {
			return nil, transport.ErrClosed
		}
		s.setPhase(PhaseConnected, "", attempt)
		return data, nil
	case <-timer.C:
		return nil, ErrResponseTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ensureConnected returns the live connection, dialing if necessary.
func (s *Session) ensureConnected(ctx context.Context, attempt int) (transport.Conn, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		return conn, nil
	}

	s.setPhase(PhaseConnecting, "", attempt)

	cctx, cancel := context.WithTimeout(ctx, s.config.ConnectTimeout)
	defer cancel()
	conn, err := s.transport.Connect(cctx, s.mac)
	if err != nil {
		// Distinguish our timeout from the caller's cancellation.
		if cctx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrConnectTimeout, s.config.ConnectTimeout)
		}
		return nil, err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.setPhase(PhaseConnected, "", attempt)
	return conn, nil
}

// drainStray discards notifications that arrived while no command was
// outstanding, e.g. a late response from a timed-out exchange. They
// must never be attributed to the next command.
func (s *Session) drainStray(conn transport.Conn) {
	for {
		select {
		case data, ok := <-conn.Notifications():
			if !ok {
				return
			}
			s.logger.Log(log.Event{
				Timestamp:    time.Now(),
				ConnectionID: s.id,
				Direction:    log.DirectionIn,
				Layer:        log.LayerSession,
				Category:     log.CategoryError,
				DeviceAddr:   s.mac.String(),
				Error:        &log.ErrorEventData{Layer: log.LayerSession, Message: "stray notification dropped", Context: fmt.Sprintf("%d bytes", len(data))},
			})
		default:
			return
		}
	}
}

// dropConn closes the link (if any) and records the new phase.
func (s *Session) dropConn(phase Phase, reason string, attempt int) {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	s.setPhase(phase, reason, attempt)
}

// setPhase transitions the phase and logs the change.
func (s *Session) setPhase(phase Phase, reason string, attempt int) {
	s.mu.Lock()
	old := s.phase
	s.phase = phase
	s.mu.Unlock()
	if old == phase {
		return
	}

	s.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: s.id,
		Direction:    log.DirectionOut,
		Layer:        log.LayerSession,
		Category:     log.CategoryState,
		DeviceAddr:   s.mac.String(),
		PhaseChange: &log.PhaseChangeEvent{
			OldPhase: old.String(),
			NewPhase: phase.String(),
			Attempt:  attempt,
			Reason:   reason,
		},
	})
}

// Release closes the link. The session stays usable; the next Execute
// reconnects.
func (s *Session) Release() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	s.setPhase(PhaseDisconnected, "released", 0)
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// Close releases the link and marks the session unusable.
func (s *Session) Close() error {
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()
	return s.Release()
}
