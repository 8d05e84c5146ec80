package wire

import "fmt"

// Minimum basic-info payload lengths (bytes after the status byte).
const (
	minBotInfoLength     = 10
	minCurtainInfoLength = 8
	minMeterInfoLength   = 3
	minLockInfoLength    = 2
)

// BotInfo is the decoded bot basic-info response.
type BotInfo struct {
	Battery     uint8
	Firmware    float64
	Strength    uint8
	Timers      uint8
	SwitchMode  bool
	Inverse     bool
	HoldSeconds uint8
}

// DecodeBotInfo decodes a bot basic-info payload.
func DecodeBotInfo(payload []byte) (BotInfo, error) {
	if len(payload) < minBotInfoLength {
		return BotInfo{}, fmt.Errorf("%w: bot info payload %d bytes, want >= %d",
			ErrProtocolMismatch, len(payload), minBotInfoLength)
	}
	return BotInfo{
		Battery:     payload[0] & 0x7f,
		Firmware:    float64(payload[1]) / 10,
		Strength:    payload[2],
		Timers:      payload[7],
		SwitchMode:  payload[8]&0x10 != 0,
		Inverse:     payload[8]&0x01 != 0,
		HoldSeconds: payload[9],
	}, nil
}

// CurtainInfo is the decoded curtain basic-info response.
// Position is device-native: 0 = open, 100 = closed.
type CurtainInfo struct {
	Battery     uint8
	Firmware    float64
	ChainLength uint8
	RightToLeft bool
	TouchToOpen bool
	Light       bool
	Fault       bool
	SolarPanel  bool
	Calibrated  bool
	InMotion    bool
	Position    uint8
	Timers      uint8
}

// DecodeCurtainInfo decodes a curtain basic-info payload.
func DecodeCurtainInfo(payload []byte) (CurtainInfo, error) {
	if len(payload) < minCurtainInfoLength {
		return CurtainInfo{}, fmt.Errorf("%w: curtain info payload %d bytes, want >= %d",
			ErrProtocolMismatch, len(payload), minCurtainInfoLength)
	}
	position := payload[5]
	if position > 100 {
		position = 100
	}
	return CurtainInfo{
		Battery:     payload[0] & 0x7f,
		Firmware:    float64(payload[1]) / 10,
		ChainLength: payload[2],
		RightToLeft: payload[3]&0x80 != 0,
		TouchToOpen: payload[3]&0x40 != 0,
		Light:       payload[3]&0x20 != 0,
		Fault:       payload[3]&0x08 != 0,
		SolarPanel:  payload[4]&0x08 != 0,
		Calibrated:  payload[4]&0x04 != 0,
		InMotion:    payload[4]&0x43 != 0,
		Position:    position,
		Timers:      payload[6],
	}, nil
}

// MeterReading is the decoded meter measurement response.
type MeterReading struct {
	TemperatureC float64
	Humidity     uint8
	Fahrenheit   bool
}

// DecodeMeterReading decodes a meter display-value payload.
func DecodeMeterReading(payload []byte) (MeterReading, error) {
	if len(payload) < minMeterInfoLength {
		return MeterReading{}, fmt.Errorf("%w: meter payload %d bytes, want >= %d",
			ErrProtocolMismatch, len(payload), minMeterInfoLength)
	}
	sign := 1.0
	if payload[1]&0x80 == 0 {
		sign = -1.0
	}
	temp := sign * (float64(payload[1]&0x7f) + float64(payload[0]&0x0f)/10)
	return MeterReading{
		TemperatureC: temp,
		Humidity:     payload[2] & 0x7f,
		Fahrenheit:   payload[2]&0x80 != 0,
	}, nil
}

// LockState is the lock mechanism state reported in status bits.
type LockState uint8

const (
	// LockStateLocked indicates the deadbolt is fully thrown.
	LockStateLocked LockState = 0

	// LockStateUnlocked indicates the deadbolt is fully retracted.
	LockStateUnlocked LockState = 1

	// LockStateLocking indicates the motor is throwing the bolt.
	LockStateLocking LockState = 2

	// LockStateUnlocking indicates the motor is retracting the bolt.
	LockStateUnlocking LockState = 3

	// LockStateLockingBlocked indicates the bolt jammed while locking.
	LockStateLockingBlocked LockState = 4

	// LockStateUnlockingBlocked indicates the bolt jammed while unlocking.
	LockStateUnlockingBlocked LockState = 5

	// LockStateNotFullyLocked indicates a partially thrown bolt.
	LockStateNotFullyLocked LockState = 6

	// LockStateUnknown is the sentinel for unrecognized status bits.
	LockStateUnknown LockState = 7
)

// String returns the lock state name.
func (s LockState) String() string {
	switch s {
	case LockStateLocked:
		return "LOCKED"
	case LockStateUnlocked:
		return "UNLOCKED"
	case LockStateLocking:
		return "LOCKING"
	case LockStateUnlocking:
		return "UNLOCKING"
	case LockStateLockingBlocked:
		return "LOCKING_BLOCKED"
	case LockStateUnlockingBlocked:
		return "UNLOCKING_BLOCKED"
	case LockStateNotFullyLocked:
		return "NOT_FULLY_LOCKED"
	default:
		return "UNKNOWN"
	}
}

// Moving reports whether the mechanism is in transit.
func (s LockState) Moving() bool {
	return s == LockStateLocking || s == LockStateUnlocking
}

// lockStateFromBits maps the 3-bit status field to a LockState.
// Values outside the known range map to the unknown sentinel.
func lockStateFromBits(bits byte) LockState {
	if bits > byte(LockStateNotFullyLocked) {
		return LockStateUnknown
	}
	return LockState(bits)
}

// LockInfo is the decoded lock mechanism status.
type LockInfo struct {
	Calibrated    bool
	State         LockState
	DoorOpen      bool
	UnclosedAlarm bool
	UnlockedAlarm bool
}

// DecodeLockInfo decodes a lock status payload (the two status bytes
// that follow the response status in a lock-info reply).
func DecodeLockInfo(payload []byte) (LockInfo, error) {
	if len(payload) < minLockInfoLength {
		return LockInfo{}, fmt.Errorf("%w: lock info payload %d bytes, want >= %d",
			ErrProtocolMismatch, len(payload), minLockInfoLength)
	}
	return LockInfo{
		Calibrated:    payload[0]&0x80 != 0,
		State:         lockStateFromBits((payload[0] & 0x70) >> 4),
		DoorOpen:      payload[0]&0x04 != 0,
		UnclosedAlarm: payload[1]&0x20 != 0,
		UnlockedAlarm: payload[1]&0x10 != 0,
	}, nil
}
