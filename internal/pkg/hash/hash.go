package hash

// Hash hashes a plaintext and verifies a plaintext against a stored hash.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}
