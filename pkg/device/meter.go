package device

import (
	"context"

	"github.com/switchbot-protocol/switchbot-go/pkg/adv"
	"github.com/switchbot-protocol/switchbot-go/pkg/transport"
	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

// Meter is the facade for the temperature/humidity sensor. Meters
// broadcast their measurements, so most applications only need
// UpdateFromAdvertisement and State; Read connects and queries the
// display values directly.
type Meter struct {
	device
}

// NewMeter creates a meter facade for the device at mac.
func NewMeter(t transport.Transport, mac adv.MAC, opts Options) *Meter {
	return &Meter{device: newDevice(t, mac, wire.ModelMeter, opts)}
}

// NewMeterPlus creates a facade for the newer meter hardware. Same
// wire format.
func NewMeterPlus(t transport.Transport, mac adv.MAC, opts Options) *Meter {
	return &Meter{device: newDevice(t, mac, wire.ModelMeterPlus, opts)}
}

// Read connects and queries the current display values.
func (m *Meter) Read(ctx context.Context) (wire.MeterReading, error) {
	if err := m.require(wire.CapStatus); err != nil {
		return wire.MeterReading{}, err
	}
	resp, err := m.exchange(ctx, wire.MeterReadCommand())
	if err != nil {
		return wire.MeterReading{}, err
	}
	return wire.DecodeMeterReading(resp.Payload)
}

// State returns the latest advertised measurement, if an advertisement
// has been seen.
func (m *Meter) State() (adv.MeterState, bool) {
	desc, ok := m.Descriptor()
	if !ok || desc.Meter == nil || !desc.Meter.Valid {
		return adv.MeterState{}, false
	}
	return *desc.Meter, true
}
