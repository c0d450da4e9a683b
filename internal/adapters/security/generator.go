package security

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/dcaplatform/authcore/internal/ports"
)

const (
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	digitChars  = "0123456789"
	symbolChars = "!@#$%^&*()-_=+[]{};:,.?"
)

// GenerateSecurePassword returns a cryptographically random password that
// contains at least one character from every requested class. The result is
// shuffled so guaranteed characters are not left in class-grouped order.
func (h *CredentialHasher) GenerateSecurePassword(length int, classes ports.CharsetFlags) (string, error) {
	var sets []string
	if classes.Upper {
		sets = append(sets, upperChars)
	}
	if classes.Lower {
		sets = append(sets, lowerChars)
	}
	if classes.Digits {
		sets = append(sets, digitChars)
	}
	if classes.Symbols {
		sets = append(sets, symbolChars)
	}
	if len(sets) == 0 {
		return "", fmt.Errorf("at least one character class is required")
	}
	if length < len(sets) {
		return "", fmt.Errorf("length %d cannot cover %d required classes", length, len(sets))
	}

	pool := ""
	for _, set := range sets {
		pool += set
	}

	out := make([]byte, 0, length)
	for _, set := range sets {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < length {
		c, err := randomChar(pool)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	// Fisher-Yates with crypto/rand indices.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func randomChar(set string) (byte, error) {
	idx, err := randomIndex(len(set))
	if err != nil {
		return 0, err
	}
	return set[idx], nil
}

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random index: %w", err)
	}
	return int(v.Int64()), nil
}
