package domain

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// PolicyViolations carries every password rule a candidate failed.
// Listing all violations at once lets callers render field-level detail
// instead of forcing a fix-one-resubmit loop.
type PolicyViolations struct {
	Violations []string
}

func (e *PolicyViolations) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidInput, strings.Join(e.Violations, "; "))
}

// Unwrap ties policy failures into the validation error category.
func (e *PolicyViolations) Unwrap() error { return ErrInvalidInput }

// ValidatePassword enforces the baseline credential policy.
// It returns a PolicyViolations naming every broken rule, or nil.
func ValidatePassword(password string) error {
	var violations []string

	if len(password) < MinPasswordLength {
		violations = append(violations, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		violations = append(violations, fmt.Sprintf("password must be at most %d characters", MaxPasswordLength))
	}

	var (
		hasUpper bool
		hasLower bool
		hasDigit bool
		hasPunct bool
	)
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasPunct = true
		}
	}
	if !hasUpper {
		violations = append(violations, "password must include an uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "password must include a lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "password must include a digit")
	}
	if !hasPunct {
		violations = append(violations, "password must include a symbol")
	}

	if len(violations) > 0 {
		return &PolicyViolations{Violations: violations}
	}
	return nil
}
