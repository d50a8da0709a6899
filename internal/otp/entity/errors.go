package entity

import "errors"

var (
	// ErrInvalidSubject is returned for empty, oversized or non-positive subjects.
	ErrInvalidSubject = errors.New("otp: invalid subject")
	// ErrInvalidConfig is returned when code length or validity period is out of range.
	ErrInvalidConfig = errors.New("otp: invalid config")
)
