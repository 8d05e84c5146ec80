package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// KeySize is the secret length in bytes (AES-128).
const KeySize = 16

// Key errors.
var (
	// ErrInvalidKey indicates malformed key material.
	ErrInvalidKey = errors.New("invalid encryption key")
)

// Key is one device communication key. The zero value is not a valid
// key; construct through New or ParseHex.
type Key struct {
	// ID is the key slot the device knows this key under.
	ID uint8

	// Bytes is the AES-128 secret.
	Bytes [KeySize]byte
}

// New builds a key from raw material.
func New(id uint8, secret []byte) (Key, error) {
	if len(secret) != KeySize {
		return Key{}, fmt.Errorf("%w: secret is %d bytes, want %d", ErrInvalidKey, len(secret), KeySize)
	}
	k := Key{ID: id}
	copy(k.Bytes[:], secret)
	return k, nil
}

// ParseHex builds a key from the hex forms the cloud hands out:
// a two-character key id and a 32-character secret.
func ParseHex(idHex, secretHex string) (Key, error) {
	id, err := hex.DecodeString(idHex)
	if err != nil || len(id) != 1 {
		return Key{}, fmt.Errorf("%w: key id %q", ErrInvalidKey, idHex)
	}
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return Key{}, fmt.Errorf("%w: secret is not hex", ErrInvalidKey)
	}
	return New(id[0], secret)
}

// String renders the key id only. The secret never appears in logs.
func (k Key) String() string {
	return fmt.Sprintf("Key(id=0x%02x)", k.ID)
}
