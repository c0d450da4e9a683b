package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcaplatform/authcore/internal/domain"
	"github.com/dcaplatform/authcore/internal/ports"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		AccessSecret:    []byte("test-access-secret"),
		RefreshSecret:   []byte("test-refresh-secret"),
		AccessTTL:       15 * time.Minute,
		RefreshTTL:      7 * 24 * time.Hour,
		Issuer:          "authcore-test",
		Audience:        "authcore-test-clients",
		FingerprintSalt: []byte("test-salt"),
	}
}

func TestIssuePairAndVerify(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTTokenService(testTokenConfig())
	require.NoError(t, err)

	userID := uuid.New()
	sessionID := uuid.New()

	pair, err := svc.IssuePair(ports.IssueParams{
		UserID:    userID,
		SessionID: sessionID,
		Roles:     []string{"USER"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), pair.ExpiresIn)

	access, err := svc.VerifyAccess(pair.AccessToken, "")
	require.NoError(t, err)
	assert.Equal(t, userID, access.UserID)
	assert.Equal(t, sessionID, access.SessionID)
	assert.Equal(t, ports.TokenTypeAccess, access.TokenType)
	assert.Equal(t, []string{"USER"}, access.Roles)

	refresh, err := svc.VerifyRefresh(pair.RefreshToken, "")
	require.NoError(t, err)
	assert.Equal(t, ports.TokenTypeRefresh, refresh.TokenType)

	// Shared token id, suffixed by type, so the pair can be correlated.
	assert.True(t, strings.HasSuffix(access.TokenID, "-access"))
	assert.True(t, strings.HasSuffix(refresh.TokenID, "-refresh"))
	assert.Equal(t,
		strings.TrimSuffix(access.TokenID, "-access"),
		strings.TrimSuffix(refresh.TokenID, "-refresh"),
	)
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTTokenService(testTokenConfig())
	require.NoError(t, err)

	pair, err := svc.IssuePair(ports.IssueParams{UserID: uuid.New(), SessionID: uuid.New()})
	require.NoError(t, err)

	// Cross-presented tokens fail: each type is signed with its own secret,
	// so the mismatch surfaces as an invalid signature.
	_, err = svc.VerifyAccess(pair.RefreshToken, "")
	require.ErrorIs(t, err, domain.ErrInvalidToken)
	_, err = svc.VerifyRefresh(pair.AccessToken, "")
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTTokenService(testTokenConfig())
	require.NoError(t, err)

	issuedAt := time.Now().UTC().Add(-2 * time.Hour)
	svc.nowFn = func() time.Time { return issuedAt }

	pair, err := svc.IssuePair(ports.IssueParams{UserID: uuid.New(), SessionID: uuid.New()})
	require.NoError(t, err)

	svc.nowFn = time.Now().UTC
	_, err = svc.VerifyAccess(pair.AccessToken, "")
	require.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTTokenService(testTokenConfig())
	require.NoError(t, err)

	pair, err := svc.IssuePair(ports.IssueParams{UserID: uuid.New(), SessionID: uuid.New()})
	require.NoError(t, err)

	tampered := pair.AccessToken[:len(pair.AccessToken)-2] + "xx"
	_, err = svc.VerifyAccess(tampered, "")
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = svc.VerifyAccess("not-a-token", "")
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyRejectsTokenWithoutLifetimeClaims(t *testing.T) {
	t.Parallel()

	cfg := testTokenConfig()
	svc, err := NewJWTTokenService(cfg)
	require.NoError(t, err)

	// Correctly signed token that never sets exp or iat. It must be turned
	// away as invalid, not trusted as unexpiring.
	claims := pairClaims{
		SessionID: uuid.NewString(),
		TokenType: ports.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  uuid.NewString(),
			Issuer:   cfg.Issuer,
			Audience: jwt.ClaimStrings{cfg.Audience},
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.AccessSecret)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(raw, "")
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestFingerprintBinding(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTTokenService(testTokenConfig())
	require.NoError(t, err)

	pair, err := svc.IssuePair(ports.IssueParams{
		UserID:      uuid.New(),
		SessionID:   uuid.New(),
		Fingerprint: "device-fingerprint-1",
	})
	require.NoError(t, err)

	claims, err := svc.VerifyAccess(pair.AccessToken, "device-fingerprint-1")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.FingerprintHash)
	assert.NotEqual(t, "device-fingerprint-1", claims.FingerprintHash)

	_, err = svc.VerifyAccess(pair.AccessToken, "device-fingerprint-2")
	require.ErrorIs(t, err, domain.ErrFingerprintMismatch)

	// No fingerprint supplied on verify: binding is not enforced.
	_, err = svc.VerifyAccess(pair.AccessToken, "")
	require.NoError(t, err)
}

func TestHashTokenStableAndOneWay(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTTokenService(testTokenConfig())
	require.NoError(t, err)

	hash := svc.HashToken("some-raw-token")
	assert.Equal(t, hash, svc.HashToken("some-raw-token"))
	assert.NotEqual(t, hash, svc.HashToken("some-other-token"))
	assert.Len(t, hash, 64)
}

func TestNewJWTTokenServiceRejectsSharedSecrets(t *testing.T) {
	t.Parallel()

	cfg := testTokenConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	_, err := NewJWTTokenService(cfg)
	require.Error(t, err)

	_, err = NewJWTTokenService(TokenConfig{})
	require.Error(t, err)
}
