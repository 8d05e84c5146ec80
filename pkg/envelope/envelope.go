package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/switchbot-protocol/switchbot-go/pkg/keys"
)

// Envelope layout constants.
const (
	// IVSize is the initialization vector length in bytes.
	IVSize = 16

	// HeaderSize is the key id byte plus the IV.
	HeaderSize = 1 + IVSize
)

// Envelope errors.
var (
	// ErrKeyIDMismatch indicates the envelope was sealed under a
	// different key slot than the one the caller holds.
	ErrKeyIDMismatch = errors.New("key id mismatch")

	// ErrAuthenticationFailed indicates the device rejected the
	// decrypted command. Never retry with the same key.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTruncatedEnvelope indicates wire bytes shorter than the header.
	ErrTruncatedEnvelope = errors.New("truncated envelope")
)

// Envelope is one encrypted command or response as it crosses the wire.
type Envelope struct {
	KeyID      uint8
	IV         [IVSize]byte
	Ciphertext []byte
}

// Bytes serializes the envelope in wire order.
func (e Envelope) Bytes() []byte {
	out := make([]byte, 0, HeaderSize+len(e.Ciphertext))
	out = append(out, e.KeyID)
	out = append(out, e.IV[:]...)
	return append(out, e.Ciphertext...)
}

// ParseEnvelope deserializes wire bytes. An empty ciphertext is legal;
// anything shorter than the header is not.
func ParseEnvelope(data []byte) (Envelope, error) {
	if len(data) < HeaderSize {
		return Envelope{}, fmt.Errorf("%w: %d bytes, want >= %d", ErrTruncatedEnvelope, len(data), HeaderSize)
	}
	e := Envelope{KeyID: data[0]}
	copy(e.IV[:], data[1:HeaderSize])
	if len(data) > HeaderSize {
		e.Ciphertext = append([]byte(nil), data[HeaderSize:]...)
	}
	return e, nil
}

// Open decrypts an envelope with the caller's key. The key id is
// checked before any cipher work.
func Open(key keys.Key, e Envelope) ([]byte, error) {
	if e.KeyID != key.ID {
		return nil, fmt.Errorf("%w: envelope 0x%02x, key 0x%02x", ErrKeyIDMismatch, e.KeyID, key.ID)
	}
	block, err := aes.NewCipher(key.Bytes[:])
	if err != nil {
		return nil, err
	}
	plaintext := make([]byte, len(e.Ciphertext))
	cipher.NewCTR(block, e.IV[:]).XORKeyStream(plaintext, e.Ciphertext)
	return plaintext, nil
}
