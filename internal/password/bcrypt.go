// Package password hashes and verifies secrets with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinProductionCost is the lowest cost accepted outside of tests.
const MinProductionCost = 12

// Bcrypt hashes secrets with a fixed cost.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a hasher using cost.
func NewBcrypt(cost int) *Bcrypt {
	return &Bcrypt{cost: cost}
}

// Hash returns the bcrypt hash of secret.
func (b *Bcrypt) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether secret matches hash. A malformed hash counts as a mismatch.
func (b *Bcrypt) Compare(hash, secret string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	case errors.Is(err, bcrypt.ErrHashTooShort):
		return false, nil
	default:
		return false, fmt.Errorf("failed to compare secret: %w", err)
	}
}
