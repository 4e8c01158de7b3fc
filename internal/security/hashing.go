// Package security hashes passwords for identities the bot stores itself.
package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches BCRYPT_COST's default.
const DefaultCost = 12

// ErrEmptyPassword is returned by Hash for an empty password.
var ErrEmptyPassword = errors.New("security: empty password")

// Hasher hashes and verifies passwords with bcrypt. Plaintext passwords are never logged or stored.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with cost clamped to bcrypt's range; 0 means DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost == 0:
		cost = DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the bcrypt hash of password. bcrypt only reads the first 72 bytes.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare returns nil when password matches hash.
func (h *Hasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
