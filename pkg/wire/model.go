package wire

// Model identifies a Switchbot device model family.
//
// The value is the ASCII tag byte the device advertises in the first
// service-data byte (low 7 bits). ModelUnknown is the zero value and
// covers tags outside the supported set.
type Model byte

const (
	// ModelUnknown covers advertisement tags outside the supported set.
	// Devices still surface as descriptors so callers can see they exist.
	ModelUnknown Model = 0

	// ModelBot is the WoHand press actuator ('H').
	ModelBot Model = 'H'

	// ModelCurtain is the WoCurtain positionable cover ('c').
	ModelCurtain Model = 'c'

	// ModelMeter is the WoSensorTH temperature/humidity sensor ('T').
	ModelMeter Model = 'T'

	// ModelMeterPlus is the newer meter hardware revision ('i').
	// Shares the meter wire format.
	ModelMeterPlus Model = 'i'

	// ModelLock is the WoLock smart lock ('o'). Lock commands require
	// an encryption key.
	ModelLock Model = 'o'

	// ModelMotion is the WoPresence motion sensor ('s').
	ModelMotion Model = 's'

	// ModelContact is the WoContact open/close sensor ('d').
	ModelContact Model = 'd'
)

// String returns the model name.
func (m Model) String() string {
	switch m {
	case ModelBot:
		return "BOT"
	case ModelCurtain:
		return "CURTAIN"
	case ModelMeter:
		return "METER"
	case ModelMeterPlus:
		return "METER_PLUS"
	case ModelLock:
		return "LOCK"
	case ModelMotion:
		return "MOTION"
	case ModelContact:
		return "CONTACT"
	case ModelUnknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// ModelForTag maps an advertisement tag byte to a Model.
// Unrecognized tags map to ModelUnknown, never an error.
func ModelForTag(tag byte) Model {
	switch m := Model(tag); m {
	case ModelBot, ModelCurtain, ModelMeter, ModelMeterPlus, ModelLock,
		ModelMotion, ModelContact:
		return m
	default:
		return ModelUnknown
	}
}

// Capability is a bitmap of operations a model supports.
type Capability uint8

const (
	// CapPress indicates the model accepts press/on/off actuation.
	CapPress Capability = 1 << iota

	// CapPosition indicates the model accepts open/close/set-position.
	CapPosition

	// CapLock indicates the model accepts lock/unlock and requires an
	// encryption key for every command.
	CapLock

	// CapStatus indicates the model answers the basic-info query.
	CapStatus
)

// Has reports whether all capabilities in want are present.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// Capabilities returns the capability bitmap for a model.
// Unknown models have no capabilities.
func (m Model) Capabilities() Capability {
	switch m {
	case ModelBot:
		return CapPress | CapStatus
	case ModelCurtain:
		return CapPosition | CapStatus
	case ModelMeter, ModelMeterPlus:
		return CapStatus
	case ModelLock:
		return CapLock | CapStatus
	case ModelMotion, ModelContact:
		return 0
	default:
		return 0
	}
}

// RequiresKey reports whether commands to this model must be wrapped
// in an encryption envelope.
func (m Model) RequiresKey() bool {
	return m.Capabilities().Has(CapLock)
}
