package entity

import "time"

type Account struct {
	ID        int64
	Email     string
	Name      string
	Password  string // hashed
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session backs a bearer token; its id is the token's jti. Deleting it
// revokes the token before it expires.
type Session struct {
	ID        string
	AccountID int64
	IPAddress string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
