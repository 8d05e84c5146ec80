package adv

import (
	"errors"
	"fmt"
	"net"

	"github.com/switchbot-protocol/switchbot-go/pkg/wire"
)

// Parser errors.
var (
	// ErrMalformedAdvertisement indicates a payload too short to carry
	// the model tag and battery field.
	ErrMalformedAdvertisement = errors.New("malformed advertisement")

	// ErrInvalidMAC indicates an address that is not a 6-byte MAC.
	ErrInvalidMAC = errors.New("invalid MAC address")
)

// BatteryUnknown is the sentinel for models that do not advertise a
// battery level or payloads too short to carry one.
const BatteryUnknown uint8 = 0xff

// minServiceDataLength covers the model tag, flags and battery bytes
// every supported model shares.
const minServiceDataLength = 3

// MAC is a 6-byte BLE device address.
type MAC [6]byte

// ParseMAC parses a textual MAC address ("e7:2d:35:...").
func ParseMAC(s string) (MAC, error) {
	hw, err := net.ParseMAC(s)
	if err != nil || len(hw) != 6 {
		return MAC{}, fmt.Errorf("%w: %q", ErrInvalidMAC, s)
	}
	var m MAC
	copy(m[:], hw)
	return m, nil
}

// String formats the address in colon-separated lowercase hex.
func (m MAC) String() string {
	return net.HardwareAddr(m[:]).String()
}

// Advertisement is one raw advertisement packet as seen on the radio.
// Either payload source may be absent depending on the scan mode.
type Advertisement struct {
	MAC              MAC
	ServiceData      []byte
	ManufacturerData []byte
	RSSI             int
}

// DeviceDescriptor is the decoded snapshot of one advertisement.
type DeviceDescriptor struct {
	MAC              MAC
	Model            wire.Model
	ServiceData      []byte
	ManufacturerData []byte
	RSSI             int

	// Battery is 0-100, or BatteryUnknown.
	Battery uint8

	// Encrypted mirrors the advertisement's encryption flag bit.
	Encrypted bool

	// Model-specific state; only the matching field is populated.
	Bot     *BotState
	Curtain *CurtainState
	Meter   *MeterState
	Lock    *LockState
	Motion  *MotionState
	Contact *ContactState
}

// Parse decodes one advertisement packet.
//
// Payloads with no service data or with a service-data prefix too short
// to identify the device fail with ErrMalformedAdvertisement. Unknown
// model tags succeed with a degraded descriptor. Per-model bit-field
// decoding never fails; fields the payload cannot support stay at their
// sentinel values.
func Parse(a Advertisement) (DeviceDescriptor, error) {
	if len(a.ServiceData) < minServiceDataLength {
		return DeviceDescriptor{}, fmt.Errorf("%w: service data %d bytes, want >= %d",
			ErrMalformedAdvertisement, len(a.ServiceData), minServiceDataLength)
	}

	d := DeviceDescriptor{
		MAC:              a.MAC,
		Model:            wire.ModelForTag(a.ServiceData[0] & 0x7f),
		ServiceData:      append([]byte(nil), a.ServiceData...),
		ManufacturerData: append([]byte(nil), a.ManufacturerData...),
		RSSI:             a.RSSI,
		Battery:          a.ServiceData[2] & 0x7f,
		Encrypted:        a.ServiceData[0]&0x80 != 0,
	}

	switch d.Model {
	case wire.ModelBot:
		d.Bot = decodeBotState(d.ServiceData)
	case wire.ModelCurtain:
		d.Curtain = decodeCurtainState(d.ServiceData, d.ManufacturerData)
	case wire.ModelMeter, wire.ModelMeterPlus:
		d.Meter = decodeMeterState(d.ServiceData, d.ManufacturerData)
	case wire.ModelLock:
		d.Lock = decodeLockState(d.ServiceData, d.ManufacturerData)
	case wire.ModelMotion:
		d.Motion = decodeMotionState(d.ServiceData, d.ManufacturerData)
	case wire.ModelContact:
		d.Contact = decodeContactState(d.ServiceData, d.ManufacturerData)
	}

	return d, nil
}
