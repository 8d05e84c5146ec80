// Package envelope wraps command frames for key-bearing Switchbot
// devices in the encrypted wire envelope.
//
// Wire order is fixed:
//
//	keyId(1) | iv(16) | ciphertext(N)
//
// The cipher is AES-128-CTR, so ciphertext length equals plaintext
// length and there is no padding ambiguity. The device answers with the
// same envelope layout keyed by the same key id.
//
// # Nonce Discipline
//
// An IV must never repeat under one key. The Sealer owns the IV
// sequence: a 12-byte prefix derived (HKDF-SHA256) from the key and a
// random per-session salt, followed by a 4-byte big-endian counter
// incremented on every Seal. Callers cannot supply an IV, which makes
// reuse structurally impossible rather than a convention.
//
// There is no MAC field in this protocol; the device itself is the
// authenticator. A wrong key surfaces as the device rejecting the
// decrypted command, which callers must treat as terminal for that key.
package envelope
