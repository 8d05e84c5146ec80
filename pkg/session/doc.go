// Package session owns the per-device connection state machine.
//
// A Session wraps a transport.Transport for one device and provides a
// single operation: Execute, which guarantees a live link, writes a
// command payload, and returns the device's response notification.
// Connect and response timeouts, exponential retry with jitter, and
// serialization of concurrent operations all live here; the layers
// above see either a response or a final error.
//
// Sessions are reusable: the link persists between commands and is
// re-established on demand. Release tears the link down.
package session
