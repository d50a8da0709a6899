// Package hotp derives counter-based one-time codes (RFC 4226) and maps wall
// clock time onto counters (RFC 6238 time steps).
//
// Seeds are base32 strings as produced by github.com/pquerna/otp. Codes are
// zero-padded decimal strings and must be compared as strings so leading
// zeros survive.
package hotp
