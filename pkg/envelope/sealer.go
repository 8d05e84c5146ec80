package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"

	"golang.org/x/crypto/hkdf"

	"github.com/switchbot-protocol/switchbot-go/pkg/keys"
)

// IV construction constants.
const (
	ivPrefixSize = 12
	saltSize     = 16
)

// ivInfo is the HKDF context string binding derived prefixes to this
// envelope format.
var ivInfo = []byte("switchbot-envelope-iv-v1")

// ErrCounterExhausted indicates the session's IV counter wrapped.
// The session must be re-established with a fresh Sealer.
var ErrCounterExhausted = errors.New("iv counter exhausted")

// Sealer encrypts command frames under one key for the duration of one
// session. It owns the IV sequence; see the package documentation for
// the nonce discipline. Safe for concurrent use.
type Sealer struct {
	key   keys.Key
	block cipher.Block

	mu      sync.Mutex
	prefix  [ivPrefixSize]byte
	counter uint32
}

// NewSealer creates a sealer with a fresh IV prefix. Two sealers for
// the same key produce disjoint IV sequences with overwhelming
// probability (random 16-byte salt into the derivation).
func NewSealer(key keys.Key) (*Sealer, error) {
	block, err := aes.NewCipher(key.Bytes[:])
	if err != nil {
		return nil, err
	}

	var salt [saltSize]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, fmt.Errorf("iv salt: %w", err)
	}

	s := &Sealer{key: key, block: block}
	r := hkdf.New(sha256.New, key.Bytes[:], salt[:], ivInfo)
	if _, err := io.ReadFull(r, s.prefix[:]); err != nil {
		return nil, fmt.Errorf("iv prefix derivation: %w", err)
	}
	return s, nil
}

// KeyID returns the key slot this sealer encrypts under.
func (s *Sealer) KeyID() uint8 {
	return s.key.ID
}

// Seal encrypts a plaintext frame under the next IV in the sequence.
func (s *Sealer) Seal(plaintext []byte) (Envelope, error) {
	iv, err := s.nextIV()
	if err != nil {
		return Envelope{}, err
	}

	e := Envelope{KeyID: s.key.ID, IV: iv}
	if len(plaintext) > 0 {
		e.Ciphertext = make([]byte, len(plaintext))
		cipher.NewCTR(s.block, iv[:]).XORKeyStream(e.Ciphertext, plaintext)
	}
	return e, nil
}

// nextIV advances the counter and returns prefix|counter.
func (s *Sealer) nextIV() ([IVSize]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counter == math.MaxUint32 {
		return [IVSize]byte{}, ErrCounterExhausted
	}
	s.counter++

	var iv [IVSize]byte
	copy(iv[:], s.prefix[:])
	binary.BigEndian.PutUint32(iv[ivPrefixSize:], s.counter)
	return iv, nil
}
