package password

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/rackatlas/inventory-api/internal/auth/domain"
)

// Policy is the password strength policy enforced before hashing.
type Policy struct {
	MinLength int
}

// DefaultPolicy matches the API's documented minimum requirements.
func DefaultPolicy() Policy {
	return Policy{MinLength: 8}
}

// Hasher hashes and verifies credentials with bcrypt. The work factor is
// configurable so operators can tune CPU cost against brute-force resistance.
type Hasher struct {
	cost   int
	policy Policy
}

// NewHasher clamps cost into bcrypt's valid range.
func NewHasher(cost int, policy Policy) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if policy.MinLength <= 0 {
		policy.MinLength = DefaultPolicy().MinLength
	}
	return &Hasher{cost: cost, policy: policy}
}

// Hash rejects passwords failing the strength policy with ErrWeakPassword,
// otherwise returns the salted bcrypt hash of the plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if err := h.checkStrength(plaintext); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash failed: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. A mismatch is
// not an error condition; it simply returns false.
func (h *Hasher) Verify(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

func (h *Hasher) checkStrength(plaintext string) error {
	if len(plaintext) < h.policy.MinLength {
		return fmt.Errorf("%w: must be at least %d characters", domain.ErrWeakPassword, h.policy.MinLength)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return fmt.Errorf("%w: must contain upper and lower case letters, a digit and a special character", domain.ErrWeakPassword)
	}
	return nil
}
