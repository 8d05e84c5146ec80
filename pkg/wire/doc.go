// Package wire defines the binary command and response format for
// Switchbot BLE devices.
//
// Every outbound command is a small byte frame written to the device's
// tx GATT characteristic:
//
//	opcode(1) | subcommand(1) | payload(0..N)
//
// The opcode is always 0x57. The subcommand selects the command
// family: 0x01 actuation, 0x02 basic info, 0x03 mode, 0x0f extended
// commands (curtain and lock operations).
//
// Responses arrive as notifications on the rx characteristic and carry
// at least one status byte followed by a model-specific payload.
//
// # Model Polymorphism
//
// The device model set is closed. Each model carries a capability
// bitmap; operation dispatch happens at the facade layer against that
// bitmap, so the codec itself stays a pure, stateless byte translator.
package wire
