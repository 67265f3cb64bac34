// Package auth provides the credential primitives: bcrypt password hashing
// and bearer token minting/validation, plus the HTTP middleware that gates
// protected routes.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor used in production. Roughly 250ms of
// hashing per attempt on current hardware, which is the point: slow for
// attackers, negligible for a login.
const defaultCost = 12

// PasswordService hashes and verifies passwords with bcrypt.
//
// The cost is injectable so tests can run at bcrypt.MinCost instead of paying
// ~250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService returns a PasswordService with the production cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost returns a PasswordService with a custom cost.
// Pass bcrypt.MinCost in tests; never lower the cost in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = defaultCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password. The output embeds the salt and cost, so
// it can be stored as-is and verified later without extra columns.
//
// bcrypt silently truncates input beyond 72 bytes; we reject it instead so
// callers are never surprised.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks a plaintext password against a stored hash. Returns nil on a
// match. The comparison is constant-time internally, so response timing does
// not leak how much of the password was right.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
