package security

import (
	"strings"
	"unicode"

	"github.com/dcaplatform/authcore/internal/domain"
	"github.com/dcaplatform/authcore/internal/ports"
)

// commonSubstrings are dictionary fragments that flatten a password's
// effective entropy regardless of length.
var commonSubstrings = []string{
	"password", "qwerty", "123456", "letmein", "admin", "welcome", "abc123",
}

// ScoreStrength scores a password 0..5 from length tiers and character
// variety, then penalizes common substrings, sequential runs and repeated
// runs. Acceptable requires at least a "fair" score and policy length.
func (h *CredentialHasher) ScoreStrength(password string) ports.StrengthResult {
	result := ports.StrengthResult{}

	if password == "" {
		result.Feedback = append(result.Feedback, "password is empty")
		result.Suggestions = append(result.Suggestions, "use at least 8 characters")
		return result
	}

	score := 0
	if len(password) >= domain.MinPasswordLength {
		score++
	} else {
		result.Suggestions = append(result.Suggestions, "use at least 8 characters")
	}
	if len(password) >= 12 {
		score++
	}
	if len(password) >= 16 {
		score++
	}

	classes := countCharacterClasses(password)
	if classes >= 3 {
		score++
	}
	if classes == 4 {
		score++
	} else {
		result.Suggestions = append(result.Suggestions, "mix upper, lower, digits and symbols")
	}

	lowered := strings.ToLower(password)
	for _, common := range commonSubstrings {
		if strings.Contains(lowered, common) {
			score--
			result.Feedback = append(result.Feedback, "contains a common pattern: "+common)
			break
		}
	}
	if hasSequentialRun(lowered, 3) {
		score--
		result.Feedback = append(result.Feedback, "contains a sequential run")
		result.Suggestions = append(result.Suggestions, "avoid sequences like abc or 123")
	}
	if hasRepeatedRun(password, 3) {
		score--
		result.Feedback = append(result.Feedback, "contains a repeated character run")
		result.Suggestions = append(result.Suggestions, "avoid repeating the same character")
	}

	if score < 0 {
		score = 0
	}
	if score > 5 {
		score = 5
	}

	result.Score = score
	result.Acceptable = score >= 2 && len(password) >= domain.MinPasswordLength
	return result
}

func countCharacterClasses(password string) int {
	var hasUpper, hasLower, hasDigit, hasPunct bool
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
	classes := 0
	for _, present := range []bool{hasUpper, hasLower, hasDigit, hasPunct} {
		if present {
			classes++
		}
	}
	return classes
}

// hasSequentialRun detects runLen consecutive ascending characters ("abc", "123").
func hasSequentialRun(lowered string, runLen int) bool {
	runes := []rune(lowered)
	if len(runes) < runLen {
		return false
	}
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1]+1 {
			run++
			if run >= runLen {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// hasRepeatedRun detects runLen identical characters in a row ("aaa").
func hasRepeatedRun(password string, runLen int) bool {
	runes := []rune(password)
	if len(runes) < runLen {
		return false
	}
	run := 1
	for i := 1; i < len(runes); i++ {
		if runes[i] == runes[i-1] {
			run++
			if run >= runLen {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}
