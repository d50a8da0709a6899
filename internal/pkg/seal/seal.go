// Package seal encrypts OTP seeds at rest with AES-256-GCM.
//
// A ciphertext is bound to the record that owns it through the AAD, so a
// seed copied onto another row fails to open. It also names the key it was
// sealed with, which lets old rows keep opening after the active key
// rotates.
package seal

import "errors"

type Purpose string

const PurposeOTPSeed Purpose = "otp_seed"

// Scope is what a ciphertext is bound to.
type Scope struct {
	Subject string // owning record id
	Purpose Purpose
}

type Sealer interface {
	Seal(plaintext []byte, scope Scope) ([]byte, error)
	Open(ciphertext []byte, scope Scope) ([]byte, error)
}

var (
	ErrNotConfigured      = errors.New("seal: no keys configured")
	ErrEmptyPlaintext     = errors.New("seal: plaintext is empty")
	ErrKeyLength          = errors.New("seal: key must be 32 bytes")
	ErrUnknownKey         = errors.New("seal: unknown key id")
	ErrMalformed          = errors.New("seal: malformed ciphertext")
	ErrUnsupportedVersion = errors.New("seal: unsupported ciphertext version")
	ErrOpenFailed         = errors.New("seal: open failed")
)
