package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dcaplatform/authcore/internal/domain"
	"github.com/dcaplatform/authcore/internal/ports"
)

// AuthService orchestrates registration, login, token refresh and logout by
// composing the credential hasher, the token signer and the session
// manager. It owns no state of its own.
type AuthService struct {
	cfg      Config
	users    ports.UserRepository
	attempts ports.LoginAttemptRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	sessions *SessionManager
	limiter  ports.RateLimiter
	events   ports.EventPublisher
	nowFn    func() time.Time
}

type AuthServiceDependencies struct {
	Config   Config
	Users    ports.UserRepository
	Attempts ports.LoginAttemptRepository
	Hasher   ports.PasswordHasher
	Tokens   ports.TokenService
	Sessions *SessionManager
	Limiter  ports.RateLimiter
	Events   ports.EventPublisher
}

func NewAuthService(deps AuthServiceDependencies) *AuthService {
	return &AuthService{
		cfg:      deps.Config.withDefaults(),
		users:    deps.Users,
		attempts: deps.Attempts,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		sessions: deps.Sessions,
		limiter:  deps.Limiter,
		events:   deps.Events,
		nowFn:    utcNow,
	}
}

// Register creates a new user account. Password is optional: Discord-linked
// accounts may register without one and set it later. When a password is
// provided the user is logged in immediately and a session plus token pair
// is returned.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	if !req.TermsAccepted {
		return RegisterResponse{}, fmt.Errorf("%w: terms must be accepted", domain.ErrInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || !strings.Contains(email, "@") {
		return RegisterResponse{}, fmt.Errorf("%w: valid email is required", domain.ErrInvalidInput)
	}
	if username == "" {
		return RegisterResponse{}, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	if taken, err := s.users.ExistsEmail(ctx, email); err != nil {
		return RegisterResponse{}, fmt.Errorf("check email: %w", err)
	} else if taken {
		return RegisterResponse{}, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}
	if taken, err := s.users.ExistsUsername(ctx, username); err != nil {
		return RegisterResponse{}, fmt.Errorf("check username: %w", err)
	} else if taken {
		return RegisterResponse{}, fmt.Errorf("%w: username already taken", domain.ErrConflict)
	}
	if req.DiscordID != "" {
		if taken, err := s.users.ExistsDiscordID(ctx, req.DiscordID); err != nil {
			return RegisterResponse{}, fmt.Errorf("check discord id: %w", err)
		} else if taken {
			return RegisterResponse{}, fmt.Errorf("%w: discord account already linked", domain.ErrConflict)
		}
	}

	var passwordHash string
	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return RegisterResponse{}, err
		}
		passwordHash = hash
	}

	now := s.nowFn()
	user := domain.User{
		UserID:       uuid.New(),
		Email:        email,
		Username:     username,
		DiscordID:    req.DiscordID,
		Status:       domain.UserStatusActive,
		Roles:        []string{s.cfg.DefaultRole},
		PasswordHash: passwordHash,
		Metadata:     domain.Metadata{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		return RegisterResponse{}, fmt.Errorf("create user: %w", err)
	}

	s.publish(ctx, ports.EventUserRegistered, map[string]any{
		"user_id":  created.UserID.String(),
		"email":    created.Email,
		"username": created.Username,
	})

	resp := RegisterResponse{UserID: created.UserID}
	if passwordHash == "" {
		return resp, nil
	}

	session, pair, err := s.startSession(ctx, created, req.Fingerprint, req.Device)
	if err != nil {
		// The account exists; the caller can log in normally.
		slog.Default().WarnContext(ctx, "post-registration session failed",
			"service", s.cfg.ServiceName,
			"module", "application",
			"layer", "application",
			"operation", "register",
			"outcome", "warning",
			"user_id", created.UserID,
			"error", err,
		)
		return resp, nil
	}
	resp.SessionID = session.SessionID
	resp.Tokens = &pair
	return resp, nil
}

// Login authenticates by any supported identifier. Unknown identifier and
// wrong password both come back as ErrInvalidCredentials; a disabled
// account is reported before the password is checked as ErrAccountDisabled.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return LoginResponse{}, fmt.Errorf("%w: identifier and password are required", domain.ErrInvalidInput)
	}

	if s.limiter != nil {
		rateKey := "auth:login:" + strings.ToLower(identifier) + ":" + req.Device.IPAddress
		allowed, err := s.limiter.Allow(ctx, rateKey, s.cfg.LoginRateLimit, s.cfg.LoginRateWindow)
		if err != nil {
			slog.Default().WarnContext(ctx, "login rate limiter unavailable",
				"service", s.cfg.ServiceName,
				"module", "application",
				"layer", "application",
				"operation", "login",
				"outcome", "warning",
				"error", err,
			)
		} else if !allowed {
			return LoginResponse{}, domain.ErrRateLimited
		}
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.recordAttempt(ctx, nil, identifier, req.Device, false, "unknown identifier")
			return LoginResponse{}, domain.ErrInvalidCredentials
		}
		return LoginResponse{}, fmt.Errorf("find user: %w", err)
	}

	if !user.CanAuthenticate() {
		s.recordAttempt(ctx, &user.UserID, identifier, req.Device, false, "account disabled")
		return LoginResponse{}, domain.ErrAccountDisabled
	}
	if !user.HasPassword() || !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.recordAttempt(ctx, &user.UserID, identifier, req.Device, false, "bad password")
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	session, pair, err := s.startSession(ctx, user, req.Fingerprint, req.Device)
	if err != nil {
		return LoginResponse{}, err
	}

	s.recordAttempt(ctx, &user.UserID, identifier, req.Device, true, "")
	s.screenSession(ctx, session.SessionID)
	s.publish(ctx, ports.EventUserLogin, map[string]any{
		"user_id":    user.UserID.String(),
		"session_id": session.SessionID.String(),
		"ip_address": req.Device.IPAddress,
	})
	return LoginResponse{
		UserID:    user.UserID,
		SessionID: session.SessionID,
		Tokens:    pair,
	}, nil
}

func (s *AuthService) startSession(ctx context.Context, user domain.User, fingerprint string, device domain.DeviceInfo) (domain.Session, ports.TokenPair, error) {
	session, err := s.sessions.Create(ctx, user.UserID, device)
	if err != nil {
		return domain.Session{}, ports.TokenPair{}, err
	}
	pair, err := s.tokens.IssuePair(ports.IssueParams{
		UserID:      user.UserID,
		SessionID:   session.SessionID,
		Roles:       user.Roles,
		Fingerprint: fingerprint,
	})
	if err != nil {
		return domain.Session{}, ports.TokenPair{}, fmt.Errorf("issue tokens: %w", err)
	}
	session.AccessTokenHash = s.tokens.HashToken(pair.AccessToken)
	session.RefreshTokenHash = s.tokens.HashToken(pair.RefreshToken)
	if err := s.sessions.sessions.Update(ctx, session); err != nil {
		return domain.Session{}, ports.TokenPair{}, fmt.Errorf("bind tokens to session: %w", err)
	}
	return session, pair, nil
}

// Refresh rotates the token pair. Presenting a refresh token that is not
// the session's current one is treated as theft: every session of the user
// is revoked and ErrTokenReuseDetected is returned.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (RefreshResponse, error) {
	claims, err := s.tokens.VerifyRefresh(req.RefreshToken, req.Fingerprint)
	if err != nil {
		return RefreshResponse{}, err
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return RefreshResponse{}, domain.ErrSessionRevoked
		}
		return RefreshResponse{}, err
	}
	switch session.Status {
	case domain.SessionStatusRevoked:
		return RefreshResponse{}, domain.ErrSessionRevoked
	case domain.SessionStatusExpired:
		return RefreshResponse{}, domain.ErrSessionExpired
	}
	if session.ExpiredByClock(s.nowFn()) {
		return RefreshResponse{}, domain.ErrSessionExpired
	}

	if session.RefreshTokenHash != s.tokens.HashToken(req.RefreshToken) {
		slog.Default().WarnContext(ctx, "refresh token reuse detected",
			"service", s.cfg.ServiceName,
			"module", "application",
			"layer", "application",
			"operation", "refresh",
			"outcome", "security",
			"user_id", session.UserID,
			"session_id", session.SessionID,
		)
		if _, err := s.sessions.RevokeAll(ctx, session.UserID, "refresh token reuse detected", uuid.Nil); err != nil {
			slog.Default().ErrorContext(ctx, "reuse response revocation failed",
				"service", s.cfg.ServiceName,
				"module", "application",
				"layer", "application",
				"operation", "refresh",
				"outcome", "error",
				"user_id", session.UserID,
				"error", err,
			)
		}
		s.publish(ctx, ports.EventTokenReuseDetected, map[string]any{
			"user_id":    session.UserID.String(),
			"session_id": session.SessionID.String(),
		})
		return RefreshResponse{}, domain.ErrTokenReuseDetected
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return RefreshResponse{}, err
	}
	if !user.CanAuthenticate() {
		return RefreshResponse{}, domain.ErrAccountDisabled
	}

	pair, err := s.tokens.IssuePair(ports.IssueParams{
		UserID:      user.UserID,
		SessionID:   session.SessionID,
		Roles:       user.Roles,
		Fingerprint: req.Fingerprint,
	})
	if err != nil {
		return RefreshResponse{}, fmt.Errorf("issue tokens: %w", err)
	}

	now := s.nowFn()
	session.AccessTokenHash = s.tokens.HashToken(pair.AccessToken)
	session.RefreshTokenHash = s.tokens.HashToken(pair.RefreshToken)
	session.LastActivityAt = now
	session.IdleTimeoutAt = now.Add(s.cfg.SessionIdleTimeout)
	if err := s.sessions.sessions.Update(ctx, session); err != nil {
		return RefreshResponse{}, fmt.Errorf("rotate session tokens: %w", err)
	}

	return RefreshResponse{
		SessionID: session.SessionID,
		Tokens:    pair,
	}, nil
}

// ValidateAccess verifies an access token end to end: signature and
// claims, revocation marker, then session liveness with an activity bump.
func (s *AuthService) ValidateAccess(ctx context.Context, token, fingerprint string) (ports.TokenClaims, error) {
	claims, err := s.tokens.VerifyAccess(token, fingerprint)
	if err != nil {
		return ports.TokenClaims{}, err
	}

	if s.sessions.revocations != nil {
		if revoked, err := s.sessions.revocations.IsRevoked(ctx, claims.SessionID); err == nil && revoked {
			return ports.TokenClaims{}, domain.ErrSessionRevoked
		}
	}

	check, err := s.sessions.Validate(ctx, claims.SessionID, ValidateOptions{
		CheckExpiry:    true,
		CheckIdle:      true,
		UpdateActivity: true,
	})
	if err != nil {
		return ports.TokenClaims{}, err
	}
	if !check.Valid {
		switch check.Reason {
		case SessionReasonRevoked:
			return ports.TokenClaims{}, domain.ErrSessionRevoked
		case SessionReasonExpired:
			return ports.TokenClaims{}, domain.ErrSessionExpired
		default:
			return ports.TokenClaims{}, domain.ErrUnauthorized
		}
	}
	return claims, nil
}

// Logout revokes the session named in the refresh token. The token must
// still verify so a stranger cannot log other people out.
func (s *AuthService) Logout(ctx context.Context, refreshToken, fingerprint string) error {
	claims, err := s.tokens.VerifyRefresh(refreshToken, fingerprint)
	if err != nil {
		return err
	}
	return s.sessions.Revoke(ctx, claims.SessionID, "logout")
}

// LogoutAll revokes every session of the user except, optionally, the
// caller's current one.
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID, keepSessionID uuid.UUID) (int64, error) {
	return s.sessions.RevokeAll(ctx, userID, "logout all", keepSessionID)
}

// ScorePassword reports strength without persisting anything.
func (s *AuthService) ScorePassword(password string) ports.StrengthResult {
	return s.hasher.ScoreStrength(password)
}

// SuggestPassword generates a policy-satisfying random password.
func (s *AuthService) SuggestPassword(length int, classes ports.CharsetFlags) (string, error) {
	return s.hasher.GenerateSecurePassword(length, classes)
}

func (s *AuthService) recordAttempt(ctx context.Context, userID *uuid.UUID, identifier string, device domain.DeviceInfo, success bool, failureReason string) {
	if s.attempts == nil {
		return
	}
	attempt := ports.LoginAttempt{
		UserID:        userID,
		Identifier:    identifier,
		AttemptAt:     s.nowFn(),
		IPAddress:     device.IPAddress,
		UserAgent:     device.UserAgent,
		Success:       success,
		FailureReason: failureReason,
	}
	if err := s.attempts.Insert(ctx, attempt); err != nil {
		slog.Default().WarnContext(ctx, "login attempt record failed",
			"service", s.cfg.ServiceName,
			"module", "application",
			"layer", "application",
			"operation", "login",
			"outcome", "warning",
			"error", err,
		)
	}
}

// screenSession runs the anomaly heuristics against a freshly created
// session. A failure here must not break the login itself.
func (s *AuthService) screenSession(ctx context.Context, sessionID uuid.UUID) {
	tags, err := s.sessions.CheckAnomalies(ctx, sessionID)
	if err != nil {
		slog.Default().WarnContext(ctx, "session anomaly screen failed",
			"service", s.cfg.ServiceName,
			"module", "application",
			"layer", "application",
			"operation", "login",
			"outcome", "warning",
			"session_id", sessionID,
			"error", err,
		)
		return
	}
	if len(tags) > 0 {
		slog.Default().WarnContext(ctx, "session flagged by anomaly screen",
			"service", s.cfg.ServiceName,
			"module", "application",
			"layer", "application",
			"operation", "login",
			"outcome", "security",
			"session_id", sessionID,
			"flags", tags,
		)
	}
}

func (s *AuthService) publish(ctx context.Context, eventType string, payload map[string]any) {
	if s.events == nil {
		return
	}
	raw, _ := json.Marshal(payload)
	if err := s.events.Publish(ctx, eventType, raw); err != nil {
		slog.Default().WarnContext(ctx, "event publish failed",
			"service", s.cfg.ServiceName,
			"module", "application",
			"layer", "application",
			"operation", "publish_event",
			"outcome", "warning",
			"event_type", eventType,
			"error", err,
		)
	}
}
