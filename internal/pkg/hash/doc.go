// Package hash hashes secrets that must never be stored in the clear:
// account passwords (bcrypt or Argon2id) and exchange token secrets
// (keyed HMAC-SHA256, so lookups stay deterministic).
package hash
