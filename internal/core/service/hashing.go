package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/neobrutal/account-system/internal/core/domain"
)

// hashCost matches the reference deployment's bcrypt work factor.
const hashCost = 10

// BcryptHasher hashes and verifies passwords with bcrypt. bcrypt salts
// every hash, so equal inputs produce distinct outputs, and comparison
// is constant-time.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: hashCost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}
	return string(hashed), nil
}

// Verify reports whether plain matches hash. A mismatch is (false, nil);
// only a malformed stored hash yields an error.
func (h *BcryptHasher) Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", domain.ErrHashing, err)
}
