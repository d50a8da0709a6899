package entity

import (
	"time"

	"github.com/shandysiswandi/otpflow/internal/pkg/valueobject"
)

// NoVerifiedCounter marks a record no code has been verified against.
const NoVerifiedCounter int64 = -1

// Record is the live OTP state of one subject.
type Record struct {
	ID      string
	Subject Subject
	// SecretKey is the sealed HOTP seed; it is only opened while deriving codes.
	SecretKey           []byte
	LastVerifiedCounter int64
	ValidityPeriod      time.Duration
	CodeLength          int
	RequestorIP         string
	ExtraData           valueobject.JSONMap
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ExpiresAt is the last instant a code of this record is accepted.
func (r Record) ExpiresAt() time.Time {
	return r.CreatedAt.Add(r.ValidityPeriod)
}

// IsExpired reports whether now is past ExpiresAt.
func (r Record) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt())
}
