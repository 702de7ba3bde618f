package staffdeck

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost mirrors the cost factor the credential store was
// seeded with. The cost is tunable via configuration; raising it only
// affects newly hashed passwords.
const DefaultBcryptCost = 12

// HashPassword will generate a password hash using the build's default
// cost.
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, passwordHashCost())
}

// HashPasswordWithCost hashes with an explicit bcrypt cost. The salt is
// random per call and embedded in the output.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password
// matches the hashed password. Any failure, including a malformed
// digest, reports a mismatch; the comparison fails closed.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}
