// Package adv parses Switchbot BLE advertisement payloads into device
// descriptors.
//
// Switchbot devices broadcast their model and a compact state snapshot
// in the service data of every advertisement; some models carry extra
// state in the manufacturer data. The first service-data byte holds the
// model tag in its low 7 bits and the encryption flag in the high bit.
//
// Parsing is total: malformed payloads produce a typed error, unknown
// model tags produce a degraded descriptor (wire.ModelUnknown) so
// callers can still see the device exists, and unrecognized bit fields
// map to sentinel values rather than failures.
//
// Descriptors are immutable snapshots. A new advertisement from the
// same device supersedes the previous descriptor; nothing is mutated
// in place.
package adv
