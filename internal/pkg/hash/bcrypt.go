package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes passwords with bcrypt. The password is first keyed with the
// pepper through HMAC-SHA256, which also keeps the input under bcrypt's 72
// byte limit. The pepper lives in configuration, never in the database.
type Bcrypt struct {
	cost   int
	pepper []byte
}

// NewBcrypt clamps cost into bcrypt's accepted range; 0 means bcrypt.DefaultCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}

	return &Bcrypt{cost: cost, pepper: []byte(pepper)}
}

func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(h.prehash(plaintext), h.cost)
}

func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	if hashed == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hashed), h.prehash(plaintext)) == nil
}

func (h *Bcrypt) prehash(plaintext string) []byte {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(plaintext))
	return base64.RawStdEncoding.AppendEncode(nil, mac.Sum(nil))
}
