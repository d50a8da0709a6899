package entity

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxIdentifierLength bounds identifier subjects (the storage column width).
const MaxIdentifierLength = 255

// SubjectKind discriminates the two subject variants.
type SubjectKind int16

const (
	SubjectKindUnknown SubjectKind = iota
	SubjectKindIdentifier
	SubjectKindAccount
)

func (k SubjectKind) String() string {
	switch k {
	case SubjectKindIdentifier:
		return "identifier"
	case SubjectKindAccount:
		return "account"
	default:
		return "unknown"
	}
}

// Subject is who an OTP record belongs to: a free-form identifier (an email
// before an account exists) or an existing account. The zero value is invalid.
type Subject struct {
	kind       SubjectKind
	identifier string
	accountID  int64
}

// IdentifierSubject builds an identifier subject from a trimmed, non-empty value.
func IdentifierSubject(identifier string) (Subject, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || utf8.RuneCountInString(identifier) > MaxIdentifierLength {
		return Subject{}, ErrInvalidSubject
	}

	return Subject{kind: SubjectKindIdentifier, identifier: identifier}, nil
}

// AccountSubject builds an account subject from a positive account id.
func AccountSubject(accountID int64) (Subject, error) {
	if accountID <= 0 {
		return Subject{}, ErrInvalidSubject
	}

	return Subject{kind: SubjectKindAccount, accountID: accountID}, nil
}

func (s Subject) Kind() SubjectKind  { return s.kind }
func (s Subject) Identifier() string { return s.identifier }
func (s Subject) AccountID() int64   { return s.accountID }
func (s Subject) IsZero() bool       { return s.kind == SubjectKindUnknown }

// String renders the subject as "<kind>:<key>" for logs and cache keys.
func (s Subject) String() string {
	switch s.kind {
	case SubjectKindIdentifier:
		return "identifier:" + s.identifier
	case SubjectKindAccount:
		return "account:" + strconv.FormatInt(s.accountID, 10)
	default:
		return "unknown:"
	}
}
