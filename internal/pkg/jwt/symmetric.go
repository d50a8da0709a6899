package jwt

import (
	"errors"
	"strconv"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

const (
	DefaultTTL = time.Hour

	minHS512KeyLen = 64
)

// Symmetric signs and verifies HS512 tokens with a shared secret.
type Symmetric struct {
	secret []byte
	issuer string
	aud    []string
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
	opts   []libJWT.ParserOption
}

func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < minHS512KeyLen {
		return nil, ErrSigningKeyTooShort
	}

	s := &Symmetric{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		aud:    cfg.Audiences,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if cfg.Clock != nil {
		s.now = cfg.Clock.Now
	}
	if cfg.UUID != nil {
		s.newID = cfg.UUID.Generate
	}

	s.opts = []libJWT.ParserOption{
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuer(s.issuer),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.now),
	}
	if len(s.aud) > 0 {
		s.opts = append(s.opts, libJWT.WithAudience(s.aud...))
	}

	return s, nil
}

func (s *Symmetric) Generate(in GenerateInput) (string, error) {
	jti := in.SessionID
	if jti == "" && s.newID != nil {
		jti = s.newID()
	}

	now := s.now()
	claims := Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(in.AccountID, 10),
			Issuer:    s.issuer,
			Audience:  s.aud,
			IssuedAt:  libJWT.NewNumericDate(now),
			NotBefore: libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(s.ttl)),
		},
		AccountID: in.AccountID,
		Email:     in.Email,
	}

	return libJWT.NewWithClaims(libJWT.SigningMethodHS512, claims).SignedString(s.secret)
}

// Verify returns ErrTokenExpired for an expired token and ErrInvalidToken
// for every other failure.
func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := libJWT.ParseWithClaims(tokenStr, &claims, s.key, s.opts...)
	switch {
	case errors.Is(err, libJWT.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case err != nil, !token.Valid:
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

func (s *Symmetric) key(t *libJWT.Token) (any, error) {
	if t.Method != libJWT.SigningMethodHS512 {
		return nil, ErrInvalidSigningMethod
	}
	return s.secret, nil
}
