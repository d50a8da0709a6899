package hotp

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/pquerna/otp"
	libHOTP "github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

const (
	// MinDigits is the shortest supported code length.
	MinDigits = 4
	// MaxDigits is the longest code length a 31-bit truncation can fill.
	MaxDigits = 9
	// DefaultDigits is the code length used when none is configured.
	DefaultDigits = 6

	secretSize = 20
)

var (
	// ErrInvalidDigits is returned for code lengths outside MinDigits..MaxDigits.
	ErrInvalidDigits = errors.New("hotp: invalid code length")
	// ErrInvalidPeriod is returned for non-positive validity periods.
	ErrInvalidPeriod = errors.New("hotp: invalid period")
)

// HOTP derives codes with HMAC-SHA1.
type HOTP struct {
	issuer string
}

// New builds an HOTP deriver; issuer labels generated keys.
func New(issuer string) *HOTP {
	if issuer == "" {
		issuer = "otpflow"
	}
	return &HOTP{issuer: issuer}
}

// NewSecret returns a fresh random base32 seed of 160 bits.
func (h *HOTP) NewSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      h.issuer,
		AccountName: h.issuer,
		SecretSize:  secretSize,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}

	return key.Secret(), nil
}

// Code returns the code for counter, zero-padded to digits.
func (h *HOTP) Code(secret string, counter uint64, digits int) (string, error) {
	if digits < MinDigits || digits > MaxDigits {
		return "", ErrInvalidDigits
	}

	return libHOTP.GenerateCodeCustom(secret, counter, libHOTP.ValidateOpts{
		Digits:    otp.Digits(digits),
		Algorithm: otp.AlgorithmSHA1,
	})
}

// Counter maps at onto its time step of length period.
func Counter(at time.Time, period time.Duration) (uint64, error) {
	step := int64(period / time.Second)
	if step <= 0 {
		return 0, ErrInvalidPeriod
	}

	unix := at.Unix()
	if unix < 0 {
		return 0, nil
	}

	return uint64(unix / step), nil
}

// Equal compares two codes in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
