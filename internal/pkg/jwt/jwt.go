// Package jwt issues the session bearer tokens handed out after a
// successful sign-in and verifies them on protected routes.
package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidSigningMethod = errors.New("jwt: unexpected signing method")
	ErrSigningKeyTooShort   = errors.New("jwt: HS512 key must be at least 64 bytes")
	ErrTokenExpired         = errors.New("jwt: token expired")
	ErrInvalidToken         = errors.New("jwt: invalid token")
)

type JWT interface {
	Generate(in GenerateInput) (string, error)
	Verify(tokenStr string) (Claims, error)
}

type GenerateInput struct {
	AccountID int64
	Email     string
	SessionID string // becomes jti; generated when empty
}

type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration // DefaultTTL when not positive
	Clock     interface{ Now() time.Time }
	UUID      interface{ Generate() string }
}

// Claims is the token body. Subject and AccountID both carry the account
// id; jti is the session id so a sign-out can revoke it.
type Claims struct {
	jwt.RegisteredClaims
	AccountID int64  `json:"account_id,string"`
	Email     string `json:"email"`
}

func (c Claims) SessionID() string {
	return c.ID
}

type authKey struct{}

// GetAuth returns the claims the auth middleware stored, or nil.
func GetAuth(ctx context.Context) *Claims {
	if clm, ok := ctx.Value(authKey{}).(Claims); ok {
		return &clm
	}
	return nil
}

func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, authKey{}, clm)
}
