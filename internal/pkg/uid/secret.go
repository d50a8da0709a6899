package uid

import (
	"crypto/rand"
	"encoding/hex"
)

// DefaultSecretBytes yields 64 hex characters, 256 bits of entropy.
const DefaultSecretBytes = 32

// Secret generates unguessable lowercase hex strings for bearer secrets.
// Unlike record ids they carry no timestamp or host data.
type Secret struct {
	size int
}

// NewSecret returns a generator of size random bytes per id; size <= 0
// means DefaultSecretBytes.
func NewSecret(size int) *Secret {
	if size <= 0 {
		size = DefaultSecretBytes
	}

	return &Secret{size: size}
}

// Generate never fails: crypto/rand.Read aborts the process rather than
// return short output.
func (s *Secret) Generate() string {
	buf := make([]byte, s.size)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
