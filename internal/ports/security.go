package ports

import (
	"time"

	"github.com/google/uuid"
)

// CharsetFlags selects which character classes a generated password must
// contain. At least one flag must be set.
type CharsetFlags struct {
	Upper   bool
	Lower   bool
	Digits  bool
	Symbols bool
}

// StrengthResult is the password strength report.
// Score runs 0..5; Acceptable requires at least "fair" (2) and policy length.
type StrengthResult struct {
	Score       int      `json:"score"`
	Feedback    []string `json:"feedback,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Acceptable  bool     `json:"acceptable"`
}

// PasswordHasher is the one-way credential hashing port.
// Verify never returns an error: malformed or empty inputs are simply false,
// so callers cannot branch on why a comparison failed.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	ScoreStrength(password string) StrengthResult
	GenerateSecurePassword(length int, classes CharsetFlags) (string, error)
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims is the adapter-neutral claim set carried by both token types.
// FingerprintHash is a salted hash; the raw fingerprint never enters a token.
type TokenClaims struct {
	UserID          uuid.UUID
	SessionID       uuid.UUID
	TokenID         string
	TokenType       string
	Roles           []string
	Permissions     []string
	FingerprintHash string
	IssuedAt        time.Time
	ExpiresAt       time.Time
}

// IssueParams captures everything needed to mint a token pair.
type IssueParams struct {
	UserID      uuid.UUID
	SessionID   uuid.UUID
	Roles       []string
	Permissions []string
	Fingerprint string
}

// TokenPair is the issued credential material. Only hashes of these values
// are ever persisted server-side.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// TokenService signs, verifies and hashes bearer tokens.
// It is a stateless signer: secrets and expiry policy come from configuration,
// verification is pure computation and never blocks on I/O.
type TokenService interface {
	IssuePair(params IssueParams) (TokenPair, error)
	VerifyAccess(token, fingerprint string) (TokenClaims, error)
	VerifyRefresh(token, fingerprint string) (TokenClaims, error)
	HashToken(token string) string
}
