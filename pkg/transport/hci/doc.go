// Package hci implements the transport interfaces on top of the host's
// Bluetooth adapter via tinygo.org/x/bluetooth (BlueZ on Linux, CoreBluetooth
// on macOS, WinRT on Windows).
//
// Commands are written without response to the command characteristic;
// responses arrive as notifications on the data characteristic. Both
// live under the vendor service all supported devices expose.
package hci
