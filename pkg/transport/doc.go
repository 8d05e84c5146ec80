// Package transport abstracts the BLE link underneath the protocol
// stack.
//
// A Transport dials devices by MAC address and yields a Conn: a
// write-only GATT characteristic plus a notification stream from the
// device. The session layer drives the Conn; device facades never
// touch it directly.
//
// The hci subpackage provides the production implementation on top of
// a real Bluetooth adapter. Tests use the scripted transport in
// internal/bletest.
package transport
