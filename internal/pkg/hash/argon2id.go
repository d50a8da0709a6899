package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2idParams are the cost parameters written into every encoded hash.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultArgon2idParams is 32 MiB, 3 passes, 2 lanes.
var DefaultArgon2idParams = Argon2idParams{MemoryKiB: 32 * 1024, Iterations: 3, Parallelism: 2}

// Stored hashes asking for more than this are rejected instead of computed.
const maxArgon2MemoryKiB = 1024 * 1024

const (
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// Argon2id hashes passwords in PHC string format. At most maxConcurrent
// derivations run at once so a burst of logins cannot exhaust memory.
type Argon2id struct {
	params Argon2idParams
	pepper string
	sema   chan struct{}
}

func NewArgon2id(pepper string) *Argon2id {
	return NewArgon2idWithParams(DefaultArgon2idParams, pepper, 2)
}

// NewArgon2idWithParams fills zero fields from DefaultArgon2idParams.
// maxConcurrent <= 0 disables the limiter.
func NewArgon2idWithParams(p Argon2idParams, pepper string, maxConcurrent int) *Argon2id {
	if p.MemoryKiB == 0 {
		p.MemoryKiB = DefaultArgon2idParams.MemoryKiB
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultArgon2idParams.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultArgon2idParams.Parallelism
	}

	a := &Argon2id{params: p, pepper: pepper}
	if maxConcurrent > 0 {
		a.sema = make(chan struct{}, maxConcurrent)
	}
	return a
}

func (a *Argon2id) Hash(str string) ([]byte, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("hash: argon2id salt: %w", err)
	}

	key := a.derive(str, salt, a.params, argon2KeyLen)

	return fmt.Appendf(nil, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		a.params.MemoryKiB,
		a.params.Iterations,
		a.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify recomputes with the parameters stored in hashed, so hashes made
// under older params keep verifying after the defaults change.
func (a *Argon2id) Verify(hashed, str string) bool {
	if hashed == "" || str == "" {
		return false
	}

	p, salt, want, ok := decodeArgon2id(hashed)
	if !ok {
		return false
	}

	got := a.derive(str, salt, p, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1
}

func (a *Argon2id) derive(str string, salt []byte, p Argon2idParams, keyLen uint32) []byte {
	if a.sema != nil {
		a.sema <- struct{}{}
		defer func() { <-a.sema }()
	}

	return argon2.IDKey([]byte(str+a.pepper), salt, p.Iterations, p.MemoryKiB, p.Parallelism, keyLen)
}

func decodeArgon2id(encoded string) (p Argon2idParams, salt, key []byte, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return p, nil, nil, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, false
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, false
	}
	if p.MemoryKiB == 0 || p.MemoryKiB > maxArgon2MemoryKiB || p.Iterations == 0 || p.Parallelism == 0 {
		return p, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, false
	}

	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, false
	}

	return p, salt, key, true
}
