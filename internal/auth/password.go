// Package auth provides password hashing for the account service.
//
// WHY BCRYPT?
// bcrypt is deliberately slow — that slowness is the security feature. It
// generates a random salt per hash and embeds salt + cost in the output
// string, so the users table needs a single password_hash column and
// nothing else. The stored value looks like:
//
//	$2a$12$<22-char salt><31-char hash>
//
// Verification is constant-time internally, so login timing does not reveal
// how much of a guess was correct.
//
// Note that hashing happens AFTER normalization: the service layer hashes
// normalize.Password(raw), never the raw bytes. Verification, however, may
// be asked to check several candidate forms of the same input against one
// hash — see the credential matcher in internal/service.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor for production hashes.
// Roughly 250ms per hash on current server hardware — negligible at login,
// brutal for offline cracking.
const defaultCost = 12

// ErrPasswordMismatch is returned by Verify when the candidate does not
// match the stored hash. Callers use it to distinguish "wrong password"
// from an operational bcrypt failure (malformed hash in the DB).
var ErrPasswordMismatch = errors.New("auth: password mismatch")

// PasswordService hashes and verifies passwords with bcrypt.
//
// It is a struct (not free functions) so the cost can be injected: tests use
// the bcrypt minimum cost to avoid paying ~250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the production cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost creates a PasswordService with a custom cost.
// Use bcrypt.MinCost in tests. Do not use low costs in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password. The plaintext must be at most 72 bytes —
// bcrypt silently truncates beyond that, so we reject instead.
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

// Verify checks a plaintext candidate against a stored hash.
// Returns nil on match, ErrPasswordMismatch on a wrong password, and a
// wrapped error for anything else (e.g. a corrupt hash string).
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
