package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dcaplatform/authcore/internal/domain"
)

// UserRepository defines persistence operations for user identities.
// FindByIdentifier resolves any supported login identifier (email, username,
// discord id) so the orchestrator does not care which one the caller sent.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (domain.User, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	ExistsDiscordID(ctx context.Context, discordID string) (bool, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, status domain.UserStatus, updatedAt time.Time) error
}

// SessionRepository manages persistent session lifecycle.
// The store is the authority on session state; no in-process cache is.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) (domain.Session, error)
	GetByID(ctx context.Context, sessionID uuid.UUID) (domain.Session, error)
	Update(ctx context.Context, session domain.Session) error
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.Session, error)
	// ListRecentByUser returns sessions with activity after since, newest
	// first. Anomaly heuristics read a short history window through this.
	ListRecentByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.Session, error)
	RevokeAllByUser(ctx context.Context, userID uuid.UUID, reason string, revokedAt time.Time, exceptSessionID uuid.UUID) (int64, error)
	// MarkExpiredBefore batch-transitions clock-crossed ACTIVE sessions to
	// EXPIRED. Idempotent; layered maintenance on top of lazy expiry.
	MarkExpiredBefore(ctx context.Context, now time.Time) (int64, error)
}

// LicenseRepository persists license keys.
// IncrementActivationsIfBelow is the atomic read-check-increment primitive
// required by the activation quota invariant; it reports false when the
// quota is already exhausted without changing anything.
type LicenseRepository interface {
	Create(ctx context.Context, license domain.LicenseKey) (domain.LicenseKey, error)
	GetByKey(ctx context.Context, key string) (domain.LicenseKey, error)
	GetByID(ctx context.Context, licenseID uuid.UUID) (domain.LicenseKey, error)
	KeyExists(ctx context.Context, key string) (bool, error)
	Update(ctx context.Context, license domain.LicenseKey) error
	IncrementActivationsIfBelow(ctx context.Context, licenseID uuid.UUID, now time.Time) (bool, error)
	DecrementActivations(ctx context.Context, licenseID uuid.UUID, now time.Time) error
}

// ActivationRepository owns (license, hardware) binding rows.
// Find returns domain.ErrNotFound when the pair has never activated.
type ActivationRepository interface {
	Create(ctx context.Context, activation domain.Activation) (domain.Activation, error)
	Find(ctx context.Context, licenseID uuid.UUID, hardwareID string) (domain.Activation, error)
	Update(ctx context.Context, activation domain.Activation) error
	ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]domain.Activation, error)
}

// AuditRepository is the append-only validation trail.
// Writes are best-effort from the caller's perspective: a failed append is
// logged and never blocks the primary validation result.
type AuditRepository interface {
	AppendKeyValidation(ctx context.Context, record domain.KeyValidation) error
	ListKeyValidationsSince(ctx context.Context, licenseID uuid.UUID, since time.Time) ([]domain.KeyValidation, error)
}

// LoginAttempt records authentication outcomes for rate limiting and
// anomaly consumers downstream.
type LoginAttempt struct {
	UserID        *uuid.UUID
	Identifier    string
	AttemptAt     time.Time
	IPAddress     string
	UserAgent     string
	Success       bool
	FailureReason string
}

// LoginAttemptRepository stores login outcomes.
type LoginAttemptRepository interface {
	Insert(ctx context.Context, attempt LoginAttempt) error
}
