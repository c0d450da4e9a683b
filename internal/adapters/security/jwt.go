package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dcaplatform/authcore/internal/domain"
	"github.com/dcaplatform/authcore/internal/ports"
)

// TokenConfig is the signing policy consumed by the token service.
// Access and refresh secrets are distinct so a leaked refresh secret cannot
// forge access tokens, and vice versa.
type TokenConfig struct {
	AccessSecret    []byte
	RefreshSecret   []byte
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	Issuer          string
	Audience        string
	FingerprintSalt []byte
}

// JWTTokenService implements HS256 token pair issuance and verification.
// It is stateless: all policy comes from TokenConfig, verification is pure
// computation.
type JWTTokenService struct {
	cfg   TokenConfig
	nowFn func() time.Time
}

// NewJWTTokenService validates the signing policy and builds the service.
func NewJWTTokenService(cfg TokenConfig) (*JWTTokenService, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("access and refresh secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "authcore"
	}
	if cfg.Audience == "" {
		cfg.Audience = "authcore-clients"
	}
	return &JWTTokenService{cfg: cfg, nowFn: func() time.Time { return time.Now().UTC() }}, nil
}

type pairClaims struct {
	SessionID       string   `json:"session_id"`
	TokenType       string   `json:"token_type"`
	Roles           []string `json:"roles,omitempty"`
	Permissions     []string `json:"permissions,omitempty"`
	FingerprintHash string   `json:"fph,omitempty"`
	jwt.RegisteredClaims
}

// IssuePair mints a correlated access/refresh token pair. Both tokens share
// one random token id, suffixed -access/-refresh, and are signed with their
// type's secret and TTL.
func (s *JWTTokenService) IssuePair(params ports.IssueParams) (ports.TokenPair, error) {
	tokenID := uuid.NewString()
	now := s.nowFn()

	fingerprintHash := ""
	if params.Fingerprint != "" {
		fingerprintHash = s.hashFingerprint(params.Fingerprint)
	}

	access, err := s.sign(params, tokenID+"-access", ports.TokenTypeAccess, fingerprintHash, now, s.cfg.AccessTTL, s.cfg.AccessSecret)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(params, tokenID+"-refresh", ports.TokenTypeRefresh, fingerprintHash, now, s.cfg.RefreshTTL, s.cfg.RefreshSecret)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return ports.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTTL.Seconds()),
	}, nil
}

func (s *JWTTokenService) sign(params ports.IssueParams, tokenID, tokenType, fingerprintHash string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := pairClaims{
		SessionID:       params.SessionID.String(),
		TokenType:       tokenType,
		Roles:           params.Roles,
		Permissions:     params.Permissions,
		FingerprintHash: fingerprintHash,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   params.UserID.String(),
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess validates signature, issuer/audience, expiry, type
// discriminator and fingerprint binding for an access token.
func (s *JWTTokenService) VerifyAccess(token, fingerprint string) (ports.TokenClaims, error) {
	return s.verify(token, fingerprint, ports.TokenTypeAccess, s.cfg.AccessSecret)
}

// VerifyRefresh mirrors VerifyAccess for refresh tokens.
func (s *JWTTokenService) VerifyRefresh(token, fingerprint string) (ports.TokenClaims, error) {
	return s.verify(token, fingerprint, ports.TokenTypeRefresh, s.cfg.RefreshSecret)
}

func (s *JWTTokenService) verify(raw, fingerprint, wantType string, secret []byte) (ports.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &pairClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.nowFn),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.TokenClaims{}, domain.ErrTokenExpired
		}
		return ports.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*pairClaims)
	if !ok || !parsed.Valid {
		return ports.TokenClaims{}, domain.ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return ports.TokenClaims{}, fmt.Errorf("%w: expected %s, got %s", domain.ErrInvalidTokenType, wantType, claims.TokenType)
	}
	// A mismatch is a hard failure even with a valid signature; this is the
	// cross-device theft defense.
	if claims.FingerprintHash != "" && fingerprint != "" && claims.FingerprintHash != s.hashFingerprint(fingerprint) {
		return ports.TokenClaims{}, domain.ErrFingerprintMismatch
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("%w: parse subject: %v", domain.ErrInvalidToken, err)
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("%w: parse session id: %v", domain.ErrInvalidToken, err)
	}

	out := ports.TokenClaims{
		UserID:          userID,
		SessionID:       sessionID,
		TokenID:         claims.ID,
		TokenType:       claims.TokenType,
		Roles:           claims.Roles,
		Permissions:     claims.Permissions,
		FingerprintHash: claims.FingerprintHash,
		ExpiresAt:       claims.ExpiresAt.Time.UTC(),
	}
	// iat is optional in the parser; tokens we mint always carry it, but a
	// foreign token without one must not crash verification.
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	return out, nil
}

// HashToken computes the one-way fingerprint stored server-side instead of
// the raw token.
func (s *JWTTokenService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

func (s *JWTTokenService) hashFingerprint(fingerprint string) string {
	sum := sha256.Sum256(append(append([]byte{}, s.cfg.FingerprintSalt...), []byte(fingerprint)...))
	return hex.EncodeToString(sum[:])
}
