package ports

// Hasher performs one-way password hashing and verification.
type Hasher interface {
	Hash(plain string) (string, error)
	// Verify reports whether plain matches hash. A mismatch is a false
	// result, not an error; only a malformed stored hash errors.
	Verify(plain, hash string) (bool, error)
}
