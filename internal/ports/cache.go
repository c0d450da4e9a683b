package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RateLimiter is the sliding-window counter collaborator gating login and
// validation attempts upstream of the core. Allow reports whether the
// attempt fits the window and counts it.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Reset(ctx context.Context, key string) error
}

// SessionRevocationStore keeps revocation markers with token-aligned TTL.
// This allows immediate logout semantics without a store round-trip on
// every token check.
type SessionRevocationStore interface {
	MarkRevoked(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// CachedValidation is the short-TTL fast-path envelope for license checks.
// Only positive results are cached; failures must always re-run the
// pipeline so repeated failures stay visible to anomaly detection.
type CachedValidation struct {
	Valid                bool      `json:"valid"`
	Code                 string    `json:"code,omitempty"`
	InGracePeriod        bool      `json:"in_grace_period,omitempty"`
	RequiresActivation   bool      `json:"requires_activation,omitempty"`
	RemainingActivations int       `json:"remaining_activations"`
	ExpiresIn            *int64    `json:"expires_in,omitempty"`
	CachedAt             time.Time `json:"cached_at"`
}

// ValidationCache is the optional fast-path lookup collaborator.
// A nil implementation simply disables the fast path. Invalidate removes
// every entry under the given key prefix, so one license state change
// clears all of its per-hardware entries at once.
type ValidationCache interface {
	Get(ctx context.Context, key string) (*CachedValidation, error)
	Put(ctx context.Context, key string, value CachedValidation, ttl time.Duration) error
	Invalidate(ctx context.Context, keyPrefix string) error
}
