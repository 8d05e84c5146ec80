// Package keys holds the per-device encryption key material for
// key-bearing Switchbot devices and the one-shot cloud exchange that
// obtains it.
//
// A lock's key pair (key id + 16 secret bytes) is minted per account by
// the vendor cloud and never changes for the life of the pairing. The
// core never persists keys; callers own them for the device's lifetime.
//
// The cloud exchange runs once per device. Account authentication
// (Cognito login) stays outside this package behind the TokenSource
// interface; CloudExchanger only performs the authenticated key
// retrieval call.
package keys
