package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dcaplatform/authcore/internal/domain"
	"github.com/dcaplatform/authcore/internal/ports"
)

// SessionManager owns the session state machine: creation with concurrency
// eviction, lazy expiry, revocation, and anomaly flagging. The persistent
// store is authoritative; nothing here caches session state in process.
type SessionManager struct {
	cfg         Config
	sessions    ports.SessionRepository
	revocations ports.SessionRevocationStore
	events      ports.EventPublisher
	nowFn       func() time.Time
}

type SessionManagerDependencies struct {
	Config      Config
	Sessions    ports.SessionRepository
	Revocations ports.SessionRevocationStore
	Events      ports.EventPublisher
}

func NewSessionManager(deps SessionManagerDependencies) *SessionManager {
	return &SessionManager{
		cfg:         deps.Config.withDefaults(),
		sessions:    deps.Sessions,
		revocations: deps.Revocations,
		events:      deps.Events,
		nowFn:       utcNow,
	}
}

const revokeReasonConcurrency = "max concurrent sessions exceeded"

// Create starts a new session for the user. When the user is at or above
// the concurrency ceiling the single oldest active session (by last
// activity) is evicted first. Eviction is a courtesy: its failure is logged
// and never blocks the new session.
func (m *SessionManager) Create(ctx context.Context, userID uuid.UUID, device domain.DeviceInfo) (domain.Session, error) {
	now := m.nowFn()

	active, err := m.sessions.ListActiveByUser(ctx, userID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("list active sessions: %w", err)
	}
	if len(active) >= m.cfg.MaxConcurrentSessions {
		oldest := active[0]
		for _, s := range active[1:] {
			if s.LastActivityAt.Before(oldest.LastActivityAt) {
				oldest = s
			}
		}
		if err := m.Revoke(ctx, oldest.SessionID, revokeReasonConcurrency); err != nil {
			slog.Default().WarnContext(ctx, "concurrency eviction failed",
				"service", m.cfg.ServiceName,
				"module", "application",
				"layer", "application",
				"operation", "session_create",
				"outcome", "warning",
				"session_id", oldest.SessionID,
				"error", err,
			)
		}
	}

	session := domain.Session{
		SessionID:      uuid.New(),
		UserID:         userID,
		Status:         domain.SessionStatusActive,
		TokenFamilyID:  uuid.New(),
		Device:         device,
		CreatedAt:      now,
		LastActivityAt: now,
		IdleTimeoutAt:  now.Add(m.cfg.SessionIdleTimeout),
		ExpiresAt:      now.Add(m.cfg.SessionAbsoluteTTL),
	}
	created, err := m.sessions.Create(ctx, session)
	if err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	return created, nil
}

// Get loads a session by id.
func (m *SessionManager) Get(ctx context.Context, sessionID uuid.UUID) (domain.Session, error) {
	return m.sessions.GetByID(ctx, sessionID)
}

// ListActive returns the user's active sessions, oldest activity first.
func (m *SessionManager) ListActive(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	return m.sessions.ListActiveByUser(ctx, userID)
}

// Validate checks session liveness. A session found expired-by-clock but
// not yet marked is lazily transitioned to EXPIRED here; a successful
// validation with UpdateActivity slides the idle window.
func (m *SessionManager) Validate(ctx context.Context, sessionID uuid.UUID, opts ValidateOptions) (SessionValidation, error) {
	session, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return SessionValidation{Valid: false, Reason: SessionReasonInvalid}, nil
		}
		return SessionValidation{}, err
	}

	switch session.Status {
	case domain.SessionStatusRevoked:
		return SessionValidation{Valid: false, Reason: SessionReasonRevoked}, nil
	case domain.SessionStatusExpired:
		return SessionValidation{Valid: false, Reason: SessionReasonExpired}, nil
	}

	now := m.nowFn()
	expired := (opts.CheckExpiry && now.After(session.ExpiresAt)) ||
		(opts.CheckIdle && now.After(session.IdleTimeoutAt))
	if expired {
		session.Status = domain.SessionStatusExpired
		if err := m.sessions.Update(ctx, session); err != nil {
			slog.Default().WarnContext(ctx, "lazy session expiry write failed",
				"service", m.cfg.ServiceName,
				"module", "application",
				"layer", "application",
				"operation", "session_validate",
				"outcome", "warning",
				"session_id", sessionID,
				"error", err,
			)
		}
		return SessionValidation{Valid: false, Reason: SessionReasonExpired}, nil
	}

	if len(session.SecurityFlags) > 0 {
		return SessionValidation{Valid: false, Reason: SessionReasonSuspicious}, nil
	}

	if opts.UpdateActivity {
		session.LastActivityAt = now
		session.IdleTimeoutAt = now.Add(m.cfg.SessionIdleTimeout)
		if err := m.sessions.Update(ctx, session); err != nil {
			return SessionValidation{}, fmt.Errorf("update session activity: %w", err)
		}
	}
	return SessionValidation{Valid: true}, nil
}

// Revoke terminates one session. Revoking an already-terminal session is a
// no-op, not an error.
func (m *SessionManager) Revoke(ctx context.Context, sessionID uuid.UUID, reason string) error {
	session, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Terminal() {
		return nil
	}

	now := m.nowFn()
	session.Status = domain.SessionStatusRevoked
	session.RevokedAt = &now
	session.RevokeReason = reason
	if err := m.sessions.Update(ctx, session); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if m.revocations != nil {
		_ = m.revocations.MarkRevoked(ctx, sessionID, session.ExpiresAt)
	}
	m.publish(ctx, ports.EventSessionRevoked, map[string]any{
		"session_id": sessionID.String(),
		"user_id":    session.UserID.String(),
		"reason":     reason,
		"revoked_at": now,
	})
	return nil
}

// RevokeAll revokes every active session of the user, optionally keeping
// one (the caller's current session) alive.
func (m *SessionManager) RevokeAll(ctx context.Context, userID uuid.UUID, reason string, exceptSessionID uuid.UUID) (int64, error) {
	now := m.nowFn()
	revoked, err := m.sessions.RevokeAllByUser(ctx, userID, reason, now, exceptSessionID)
	if err != nil {
		return 0, err
	}
	if m.revocations != nil {
		// Markers are best-effort; the store rows already carry the truth.
		if active, listErr := m.sessions.ListRecentByUser(ctx, userID, now.Add(-m.cfg.SessionAbsoluteTTL)); listErr == nil {
			for _, s := range active {
				if s.Status == domain.SessionStatusRevoked && s.SessionID != exceptSessionID {
					_ = m.revocations.MarkRevoked(ctx, s.SessionID, s.ExpiresAt)
				}
			}
		}
	}
	return revoked, nil
}

// CheckAnomalies runs the heuristics over the user's recent session
// history and appends any newly detected tags to the session's security
// flags. Tags are never removed automatically.
func (m *SessionManager) CheckAnomalies(ctx context.Context, sessionID uuid.UUID) ([]string, error) {
	session, err := m.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := m.nowFn()
	recent, err := m.sessions.ListRecentByUser(ctx, session.UserID, now.Add(-m.cfg.AnomalyWindow))
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}

	locations := map[string]struct{}{}
	ips := map[string]struct{}{}
	nightly := 0
	for _, s := range recent {
		if s.Device.Location != "" {
			locations[s.Device.Location] = struct{}{}
		}
		if s.Device.IPAddress != "" {
			ips[s.Device.IPAddress] = struct{}{}
		}
		if hour := s.LastActivityAt.Hour(); hour >= 2 && hour < 5 {
			nightly++
		}
	}

	var detected []string
	if len(locations) > 3 {
		detected = append(detected, AnomalyRapidLocationChanges)
	}
	if len(ips) > 3 {
		detected = append(detected, AnomalyMultipleIPAddresses)
	}
	if len(recent) > 0 && nightly*2 > len(recent) {
		detected = append(detected, AnomalyUnusualActivityPattern)
	}

	var added []string
	for _, tag := range detected {
		if !session.HasSecurityFlag(tag) {
			session.SecurityFlags = append(session.SecurityFlags, tag)
			added = append(added, tag)
		}
	}
	if len(added) > 0 {
		if err := m.sessions.Update(ctx, session); err != nil {
			return nil, fmt.Errorf("persist security flags: %w", err)
		}
		m.publish(ctx, ports.EventSuspiciousActivity, map[string]any{
			"session_id": sessionID.String(),
			"user_id":    session.UserID.String(),
			"anomalies":  added,
		})
	}
	return detected, nil
}

// CleanupExpired batch-marks clock-crossed sessions. It is idempotent and
// intended for an externally scheduled sweep; lazy expiry in Validate does
// not depend on it.
func (m *SessionManager) CleanupExpired(ctx context.Context) (int64, error) {
	return m.sessions.MarkExpiredBefore(ctx, m.nowFn())
}

func (m *SessionManager) publish(ctx context.Context, eventType string, payload map[string]any) {
	if m.events == nil {
		return
	}
	raw, _ := json.Marshal(payload)
	if err := m.events.Publish(ctx, eventType, raw); err != nil {
		slog.Default().WarnContext(ctx, "event publish failed",
			"service", m.cfg.ServiceName,
			"module", "application",
			"layer", "application",
			"operation", "publish_event",
			"outcome", "warning",
			"event_type", eventType,
			"error", err,
		)
	}
}
