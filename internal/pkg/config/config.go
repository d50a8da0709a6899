// Package config reads runtime settings. Keys are dotted paths such as
// "otp.validity_period_seconds"; a missing key yields the zero value, and
// callers apply their own defaults.
package config

import (
	"io"
	"time"
)

// Config is read once at construction time by each component.
type Config interface {
	io.Closer

	// GetSecond and GetMinute read an integer count of that unit.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration

	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint16(key string) uint16
	GetUint32(key string) uint32
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a standard base64 value; invalid input yields nil.
	GetBinary(key string) []byte

	// GetArray accepts a YAML list or a comma separated string. Blank
	// elements are dropped, so an unset key yields an empty slice.
	GetArray(key string) []string
}
