package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost balances brute-force resistance against login latency.
// bcrypt.DefaultCost (10) is roughly 100ms on current hardware.
const DefaultCost = bcrypt.DefaultCost

var ErrHashingFailed = errors.New("password hashing failed")

// Hash derives a salted bcrypt hash from the plaintext password using
// DefaultCost. The salt is generated internally, so two calls with the
// same password produce different hashes.
func Hash(password string) (string, error) {
	return HashWithCost(password, DefaultCost)
}

// HashWithCost derives a salted bcrypt hash with an explicit cost factor.
// Costs below bcrypt.MinCost are raised to DefaultCost rather than
// producing a weak hash.
func HashWithCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.Join(ErrHashingFailed, err)
	}
	return string(hash), nil
}

// Verify reports whether the plaintext password matches the stored hash.
// Wrong passwords and malformed hashes are indistinguishable to the
// caller: both return false through the same bcrypt comparison path.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsRehash reports whether the stored hash was created with a cost
// lower than the given one and should be upgraded on next login.
func NeedsRehash(hash string, cost int) (bool, error) {
	current, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false, fmt.Errorf("invalid password hash: %w", err)
	}
	return current < cost, nil
}
