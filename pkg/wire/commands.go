package wire

import "fmt"

// Extended command families (first payload byte after 0x0f).
const (
	extMeterRead = 0x31
	extCurtain   = 0x45
	extLockCmd   = 0x4e
	extLockInfo  = 0x4f
)

// Curtain command modes. The firmware accepts both the "performance"
// (0x01) and "default" (0xff) mode selectors; 0xff works across
// hardware revisions.
const (
	curtainMove = 0x01
	curtainStop = 0x00
	curtainMode = 0xff
)

// Curtain positions are device-native: 0 = open, 100 = closed.
const (
	curtainOpen   = 0x00
	curtainClosed = 0x64
)

// BasicInfoCommand queries battery, firmware and model-specific
// settings. All models answer it.
func BasicInfoCommand() CommandFrame {
	return NewCommand(SubcommandBasicInfo)
}

// PressCommand actuates the bot arm once.
func PressCommand() CommandFrame {
	return NewCommand(SubcommandAct, 0x00)
}

// OnCommand switches the bot on (switch mode only).
func OnCommand() CommandFrame {
	return NewCommand(SubcommandAct, 0x01)
}

// OffCommand switches the bot off (switch mode only).
func OffCommand() CommandFrame {
	return NewCommand(SubcommandAct, 0x02)
}

// ArmDownCommand lowers the bot arm.
func ArmDownCommand() CommandFrame {
	return NewCommand(SubcommandAct, 0x03)
}

// ArmUpCommand raises the bot arm.
func ArmUpCommand() CommandFrame {
	return NewCommand(SubcommandAct, 0x04)
}

// SetModeCommand changes the bot actuation mode.
// strength is the motor strength percentage.
func SetModeCommand(switchMode, inverse bool, strength uint8) CommandFrame {
	var mode byte
	if switchMode {
		mode |= 0x10
	}
	if inverse {
		mode |= 0x01
	}
	return NewCommand(SubcommandSetMode, strength, mode)
}

// MeterReadCommand queries the meter's current display mode and values.
func MeterReadCommand() CommandFrame {
	return NewCommand(SubcommandExtended, extMeterRead)
}

// OpenCommand drives the curtain fully open.
func OpenCommand() CommandFrame {
	return NewCommand(SubcommandExtended, extCurtain, 0x01, 0x05, curtainMode, curtainOpen)
}

// CloseCommand drives the curtain fully closed.
func CloseCommand() CommandFrame {
	return NewCommand(SubcommandExtended, extCurtain, 0x01, 0x05, curtainMode, curtainClosed)
}

// StopCommand halts curtain movement.
func StopCommand() CommandFrame {
	return NewCommand(SubcommandExtended, extCurtain, 0x01, curtainStop, curtainMode)
}

// PositionCommand drives the curtain to a device-native position,
// 0 = open through 100 = closed. Values above 100 are rejected.
func PositionCommand(position uint8) (CommandFrame, error) {
	if position > 100 {
		return CommandFrame{}, fmt.Errorf("position %d out of range [0,100]", position)
	}
	return NewCommand(SubcommandExtended, extCurtain, 0x01, 0x05, curtainMode, position), nil
}

// LockCommand throws the deadbolt. Must be sealed before transmission.
func LockCommand() CommandFrame {
	return NewCommand(SubcommandExtended, extLockCmd, 0x01, 0x01, 0x10, 0x00)
}

// UnlockCommand retracts the deadbolt. Must be sealed before transmission.
func UnlockCommand() CommandFrame {
	return NewCommand(SubcommandExtended, extLockCmd, 0x01, 0x01, 0x10, 0x80)
}

// LockInfoCommand queries the lock mechanism state. Must be sealed
// before transmission.
func LockInfoCommand() CommandFrame {
	return NewCommand(SubcommandExtended, extLockInfo, 0x81, 0x01)
}
