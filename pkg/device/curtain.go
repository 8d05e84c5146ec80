package device

import (
	"context"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport"
	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

// Curtain is the facade for the positionable cover.
//
// The wire protocol counts positions from the open end: 0 = open,
// 100 = closed. With ReverseMode the facade flips the scale so 100 =
// open, matching curtains mounted in the opposite direction. All
// positions crossing this facade are in the caller's scale.
type Curtain struct {
	device
	reverse bool
}

// CurtainOptions configures a curtain facade.
type CurtainOptions struct {
	Options

	// ReverseMode flips the position scale (100 = open).
	ReverseMode bool
}

// NewCurtain creates a curtain facade for the device at mac.
func NewCurtain(t transport.Transport, mac adv.MAC, opts CurtainOptions) *Curtain {
	return &Curtain{
		device:  newDevice(t, mac, wire.ModelCurtain, opts.Options),
		reverse: opts.ReverseMode,
	}
}

// Open drives the curtain fully open.
func (c *Curtain) Open(ctx context.Context) error {
	return c.move(ctx, wire.OpenCommand())
}

// Close drives the curtain fully closed.
func (c *Curtain) Close(ctx context.Context) error {
	return c.move(ctx, wire.CloseCommand())
}

// Stop halts movement.
func (c *Curtain) Stop(ctx context.Context) error {
	return c.move(ctx, wire.StopCommand())
}

// SetPosition drives the curtain to position (0-100, in the facade's
// scale).
func (c *Curtain) SetPosition(ctx context.Context, position uint8) error {
	if err := c.require(wire.CapPosition); err != nil {
		return err
	}
	if position > 100 {
		_, err := wire.PositionCommand(position) // out of range in either scale
		return err
	}
	frame, err := wire.PositionCommand(c.toNative(position))
	if err != nil {
		return err
	}
	_, err = c.exchange(ctx, frame)
	return err
}

// Info queries battery, firmware and motion state. Position is
// reported in the facade's scale.
func (c *Curtain) Info(ctx context.Context) (wire.CurtainInfo, error) {
	if err := c.require(wire.CapStatus); err != nil {
		return wire.CurtainInfo{}, err
	}
	resp, err := c.exchange(ctx, wire.BasicInfoCommand())
	if err != nil {
		return wire.CurtainInfo{}, err
	}
	info, err := wire.DecodeCurtainInfo(resp.Payload)
	if err != nil {
		return wire.CurtainInfo{}, err
	}
	info.Position = c.toNative(info.Position)
	return info, nil
}

// State returns the latest advertised curtain state, if an
// advertisement has been seen. Position is in the facade's scale.
func (c *Curtain) State() (adv.CurtainState, bool) {
	desc, ok := c.Descriptor()
	if !ok || desc.Curtain == nil {
		return adv.CurtainState{}, false
	}
	state := *desc.Curtain
	state.Position = c.toNative(state.Position)
	return state, true
}

// toNative converts between the facade scale and the wire scale.
// The mapping is its own inverse. Callers validate range first.
func (c *Curtain) toNative(position uint8) uint8 {
	if !c.reverse || position > 100 {
		return position
	}
	return 100 - position
}

func (c *Curtain) move(ctx context.Context, frame wire.CommandFrame) error {
	if err := c.require(wire.CapPosition); err != nil {
		return err
	}
	_, err := c.exchange(ctx, frame)
	return err
}
