package domain

import (
	"time"

	"github.com/google/uuid"
)

type LicenseType string

const (
	LicenseTypeTrial               LicenseType = "TRIAL"
	LicenseTypeStandard            LicenseType = "STANDARD"
	LicenseTypePremium             LicenseType = "PREMIUM"
	LicenseTypeEnterprise          LicenseType = "ENTERPRISE"
	LicenseTypeSubscriptionMonthly LicenseType = "SUBSCRIPTION_MONTHLY"
	LicenseTypeSubscriptionYearly  LicenseType = "SUBSCRIPTION_YEARLY"
)

type LicenseStatus string

const (
	LicenseStatusActive    LicenseStatus = "ACTIVE"
	LicenseStatusInactive  LicenseStatus = "INACTIVE"
	LicenseStatusSuspended LicenseStatus = "SUSPENDED"
	LicenseStatusRevoked   LicenseStatus = "REVOKED"
	LicenseStatusExpired   LicenseStatus = "EXPIRED"
	LicenseStatusExhausted LicenseStatus = "EXHAUSTED"
)

// LicenseKey is the entitlement aggregate.
// CurrentActivations is mutated only through the activation protocol and
// always satisfies CurrentActivations <= MaxActivations; the store enforces
// the invariant with an atomic conditional increment.
type LicenseKey struct {
	LicenseID          uuid.UUID
	Key                string
	Type               LicenseType
	Status             LicenseStatus
	UserID             uuid.UUID
	MaxActivations     int
	CurrentActivations int
	ValidFrom          *time.Time
	ExpiresAt          *time.Time
	GracePeriodDays    int
	IPWhitelist        []string
	RequiresHardwareID bool
	Features           map[string]bool
	Metadata           Metadata
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Perpetual reports whether the key never expires.
func (l LicenseKey) Perpetual() bool { return l.ExpiresAt == nil }

// RemainingActivations returns the quota head-room, never negative.
func (l LicenseKey) RemainingActivations() int {
	remaining := l.MaxActivations - l.CurrentActivations
	if remaining < 0 {
		return 0
	}
	return remaining
}

// InGracePeriod reports whether an expired key is still within its
// configured grace window.
func (l LicenseKey) InGracePeriod(now time.Time) bool {
	if l.ExpiresAt == nil || l.GracePeriodDays <= 0 {
		return false
	}
	graceEnd := l.ExpiresAt.Add(time.Duration(l.GracePeriodDays) * 24 * time.Hour)
	return now.After(*l.ExpiresAt) && now.Before(graceEnd)
}

type ActivationStatus string

const (
	ActivationStatusActive      ActivationStatus = "ACTIVE"
	ActivationStatusDeactivated ActivationStatus = "DEACTIVATED"
)

// Activation binds a license key to one hardware id.
// There is exactly one row per (license, hardware) pair; re-activation
// reuses the row instead of consuming additional quota.
type Activation struct {
	ActivationID  uuid.UUID
	LicenseID     uuid.UUID
	HardwareID    string
	DeviceName    string
	IPAddress     string
	Status        ActivationStatus
	ActivatedAt   time.Time
	LastSeenAt    time.Time
	DeactivatedAt *time.Time
}

// KeyValidation is one append-only audit record per validation attempt.
// Records are never mutated after creation.
type KeyValidation struct {
	ID         uuid.UUID
	LicenseID  uuid.UUID
	Key        string
	Valid      bool
	ReasonCode string
	HardwareID string
	IPAddress  string
	CreatedAt  time.Time
}
