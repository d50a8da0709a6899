package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
)

const (
	formatVersion byte = 2
	keyLen             = 32
	nonceLen           = 12
	headerLen          = 2 + nonceLen // version, key id, nonce
)

// AESGCM seals with the active key and opens with whichever key the
// ciphertext names. Layout: version | key id | nonce | ciphertext+tag.
type AESGCM struct {
	active byte
	aeads  map[byte]cipher.AEAD
}

// NewAESGCM builds a sealer from keys by id; active must be one of them.
func NewAESGCM(active byte, keys map[byte][]byte) (*AESGCM, error) {
	if len(keys) == 0 {
		return nil, ErrNotConfigured
	}
	if _, ok := keys[active]; !ok {
		return nil, fmt.Errorf("%w: active key %d", ErrUnknownKey, active)
	}

	s := &AESGCM{active: active, aeads: make(map[byte]cipher.AEAD, len(keys))}
	for id, key := range keys {
		if len(key) != keyLen {
			return nil, fmt.Errorf("%w: key %d has %d bytes", ErrKeyLength, id, len(key))
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		s.aeads[id] = aead
	}
	return s, nil
}

// ParseKeyID reads a key id such as "1" from config.
func ParseKeyID(s string) (byte, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0, fmt.Errorf("seal: key id %q: %w", s, err)
	}
	return byte(id), nil
}

func (s *AESGCM) Seal(plaintext []byte, scope Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	out := make([]byte, headerLen, headerLen+len(plaintext)+s.aeads[s.active].Overhead())
	out[0], out[1] = formatVersion, s.active
	if _, err := rand.Read(out[2:headerLen]); err != nil {
		return nil, fmt.Errorf("seal: nonce: %w", err)
	}

	return s.aeads[s.active].Seal(out, out[2:headerLen], plaintext, aad(scope)), nil
}

func (s *AESGCM) Open(ciphertext []byte, scope Scope) ([]byte, error) {
	if len(ciphertext) <= headerLen {
		return nil, ErrMalformed
	}
	if ciphertext[0] != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, ciphertext[0])
	}

	aead, ok := s.aeads[ciphertext[1]]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKey, ciphertext[1])
	}

	plain, err := aead.Open(nil, ciphertext[2:headerLen], ciphertext[headerLen:], aad(scope))
	if err != nil {
		return nil, ErrOpenFailed
	}
	return plain, nil
}

// aad is a fixed size digest of the scope so raw record ids never reach
// the cipher input.
func aad(s Scope) []byte {
	sum := sha256.Sum256([]byte(strconv.Quote(s.Subject) + "|" + string(s.Purpose)))
	return sum[:]
}
