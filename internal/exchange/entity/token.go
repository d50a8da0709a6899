package entity

import (
	"errors"
	"time"

	"github.com/shandysiswandi/otpflow/internal/pkg/valueobject"
)

var (
	// ErrInvalidOrExpiredToken covers absent, expired, consumed and malformed
	// tokens alike so callers cannot tell them apart.
	ErrInvalidOrExpiredToken = errors.New("exchange: invalid or expired token")
	ErrInvalidPayload        = errors.New("exchange: payload is required")
	ErrInvalidTTL            = errors.New("exchange: ttl must be positive")
)

// Token is the stored side of an exchange token. The bearer secret itself is
// never kept, only its keyed hash.
type Token struct {
	ID        string
	TokenHash string
	Payload   valueobject.JSONMap
	ExpiresAt time.Time
	CreatedAt time.Time
}
