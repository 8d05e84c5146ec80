package device

import (
	"context"
	"errors"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport"
	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

// Bot is the facade for the press actuator.
type Bot struct {
	device
}

// NewBot creates a bot facade for the device at mac.
func NewBot(t transport.Transport, mac adv.MAC, opts Options) *Bot {
	return &Bot{device: newDevice(t, mac, wire.ModelBot, opts)}
}

// Press actuates the arm once (press mode).
func (b *Bot) Press(ctx context.Context) error {
	return b.act(ctx, wire.PressCommand())
}

// On switches on (switch mode only).
func (b *Bot) On(ctx context.Context) error {
	return b.act(ctx, wire.OnCommand())
}

// Off switches off (switch mode only).
func (b *Bot) Off(ctx context.Context) error {
	return b.act(ctx, wire.OffCommand())
}

// ArmUp raises the arm.
func (b *Bot) ArmUp(ctx context.Context) error {
	return b.act(ctx, wire.ArmUpCommand())
}

// ArmDown lowers the arm.
func (b *Bot) ArmDown(ctx context.Context) error {
	return b.act(ctx, wire.ArmDownCommand())
}

// SetMode switches between press and switch mode and sets motor
// strength. Unlike actuation, a mode change must be strictly accepted.
func (b *Bot) SetMode(ctx context.Context, switchMode, inverse bool, strength uint8) error {
	if err := b.require(wire.CapPress); err != nil {
		return err
	}
	_, err := b.exchange(ctx, wire.SetModeCommand(switchMode, inverse, strength))
	return err
}

// Info queries battery, firmware and mode settings.
func (b *Bot) Info(ctx context.Context) (wire.BotInfo, error) {
	if err := b.require(wire.CapStatus); err != nil {
		return wire.BotInfo{}, err
	}
	resp, err := b.exchange(ctx, wire.BasicInfoCommand())
	if err != nil {
		return wire.BotInfo{}, err
	}
	return wire.DecodeBotInfo(resp.Payload)
}

// State returns the latest advertised bot state, if an advertisement
// has been seen.
func (b *Bot) State() (adv.BotState, bool) {
	desc, ok := b.Descriptor()
	if !ok || desc.Bot == nil {
		return adv.BotState{}, false
	}
	return *desc.Bot, true
}

// act runs one actuation round trip. The firmware answers
// StatusUnsupported in some modes while still moving the arm, so that
// status is not an error here.
func (b *Bot) act(ctx context.Context, frame wire.CommandFrame) error {
	if err := b.require(wire.CapPress); err != nil {
		return err
	}
	_, err := b.exchange(ctx, frame)
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Status.ActuationOK() {
		return nil
	}
	return err
}
