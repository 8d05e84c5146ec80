package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/envelope"
	"github.com/switchbot-protocol/switchbot-go/pkg/keys"
	"github.com/switchbot-protocol/switchbot-go/pkg/log"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport"
	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

// Lock is the facade for the smart lock. Every command and response
// travels inside an encryption envelope sealed under the device key.
type Lock struct {
	device
	key    keys.Key
	sealer *envelope.Sealer
}

// NewLock creates a lock facade for the device at mac. A zero key is
// rejected with ErrKeyRequired; lock commands cannot be sent in the
// clear.
func NewLock(t transport.Transport, mac adv.MAC, key keys.Key, opts Options) (*Lock, error) {
	if key == (keys.Key{}) {
		return nil, ErrKeyRequired
	}
	sealer, err := envelope.NewSealer(key)
	if err != nil {
		return nil, err
	}
	return &Lock{
		device: newDevice(t, mac, wire.ModelLock, opts),
		key:    key,
		sealer: sealer,
	}, nil
}

// Lock throws the deadbolt.
func (l *Lock) Lock(ctx context.Context) error {
	_, err := l.exchangeSealed(ctx, wire.LockCommand())
	return err
}

// Unlock retracts the deadbolt.
func (l *Lock) Unlock(ctx context.Context) error {
	_, err := l.exchangeSealed(ctx, wire.UnlockCommand())
	return err
}

// Info queries the mechanism state.
func (l *Lock) Info(ctx context.Context) (wire.LockInfo, error) {
	resp, err := l.exchangeSealed(ctx, wire.LockInfoCommand())
	if err != nil {
		return wire.LockInfo{}, err
	}
	return wire.DecodeLockInfo(resp.Payload)
}

// State returns the latest advertised lock state, if an advertisement
// has been seen.
func (l *Lock) State() (adv.LockState, bool) {
	desc, ok := l.Descriptor()
	if !ok || desc.Lock == nil {
		return adv.LockState{}, false
	}
	return *desc.Lock, true
}

// exchangeSealed seals a frame, runs the round trip, and opens the
// response. Devices reject a bad key with a bare plaintext status
// byte; anything long enough to be an envelope is treated as one.
func (l *Lock) exchangeSealed(ctx context.Context, frame wire.CommandFrame) (wire.ResponseFrame, error) {
	if err := l.require(wire.CapLock); err != nil {
		return wire.ResponseFrame{}, err
	}
	if err := frame.Validate(); err != nil {
		return wire.ResponseFrame{}, err
	}

	sealed, err := l.sealer.Seal(frame.Bytes())
	if err != nil {
		return wire.ResponseFrame{}, err
	}
	l.logCommand(frame)
	l.logEnvelope(log.DirectionOut, sealed)

	raw, err := l.session.Execute(ctx, sealed.Bytes())
	if err != nil {
		return wire.ResponseFrame{}, err
	}

	reply, err := envelope.ParseEnvelope(raw)
	if errors.Is(err, envelope.ErrTruncatedEnvelope) {
		// Too short to be an envelope: a plaintext rejection status.
		plain, perr := wire.ParseResponse(raw)
		if perr != nil {
			return wire.ResponseFrame{}, perr
		}
		l.logResponse(plain)
		if serr := statusError(plain.Status); serr != nil {
			return wire.ResponseFrame{}, serr
		}
		return wire.ResponseFrame{}, fmt.Errorf("%w: unencrypted reply to sealed command", envelope.ErrAuthenticationFailed)
	}
	if err != nil {
		return wire.ResponseFrame{}, err
	}
	l.logEnvelope(log.DirectionIn, reply)

	plaintext, err := envelope.Open(l.key, reply)
	if err != nil {
		return wire.ResponseFrame{}, err
	}
	resp, err := wire.ParseResponse(plaintext)
	if err != nil {
		return wire.ResponseFrame{}, err
	}
	l.logResponse(resp)
	return resp, statusError(resp.Status)
}

func (l *Lock) logEnvelope(dir log.Direction, e envelope.Envelope) {
	category := log.CategoryCommand
	if dir == log.DirectionIn {
		category = log.CategoryResponse
	}
	l.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: l.session.ID(),
		Direction:    dir,
		Layer:        log.LayerWire,
		Category:     category,
		DeviceAddr:   l.mac.String(),
		Model:        l.model.String(),
		Envelope:     &log.EnvelopeEvent{KeyID: e.KeyID, CiphertextSize: len(e.Ciphertext)},
	})
}
