package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/dcaplatform/authcore/internal/domain"
)

// CredentialHasher implements password hashing via bcrypt plus the
// strength/generation helpers of the hasher port. Cost is configurable so
// the ~100ms verify target can be tuned per environment.
type CredentialHasher struct {
	cost int
}

// NewCredentialHasher creates a bcrypt-based hasher with default fallback cost.
func NewCredentialHasher(cost int) *CredentialHasher {
	if cost <= 0 {
		cost = 12
	}
	return &CredentialHasher{cost: cost}
}

// Hash enforces the credential policy, then derives an adaptive one-way hash.
// Policy failures return a PolicyViolations naming every broken rule.
func (h *CredentialHasher) Hash(password string) (string, error) {
	if err := domain.ValidatePassword(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(hashed), nil
}

// Verify compares in constant time and never returns an error.
// Empty inputs are false, not a failure the caller can distinguish.
func (h *CredentialHasher) Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
