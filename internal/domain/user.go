package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusBanned    UserStatus = "BANNED"
)

// User is the canonical identity aggregate.
// PasswordHash is empty for external-provider-only accounts; those users
// authenticate through their provider and never hold a local credential.
type User struct {
	UserID        uuid.UUID
	Email         string
	Username      string
	DiscordID     string
	Status        UserStatus
	Roles         []string
	PasswordHash  string
	EmailVerified bool
	Metadata      Metadata
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether local credential login is possible.
func (u User) HasPassword() bool { return u.PasswordHash != "" }

// CanAuthenticate gates login before any credential check so a disabled
// account rejection never leaks which later check would have failed.
func (u User) CanAuthenticate() bool { return u.Status == UserStatusActive }

type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "ACTIVE"
	SessionStatusExpired SessionStatus = "EXPIRED"
	SessionStatusRevoked SessionStatus = "REVOKED"
)

// DeviceInfo is the device/browser context captured at session creation.
// Fingerprint arrives pre-hashed; the raw fingerprint never reaches storage.
type DeviceInfo struct {
	DeviceType      string
	FingerprintHash string
	UserAgent       string
	IPAddress       string
	Location        string
}

// Session is one authenticated device/browser context.
// IdleTimeoutAt slides with activity; ExpiresAt is the absolute cap.
// Either crossing the clock invalidates the session independently.
type Session struct {
	SessionID        uuid.UUID
	UserID           uuid.UUID
	Status           SessionStatus
	RefreshTokenHash string
	AccessTokenHash  string
	TokenFamilyID    uuid.UUID
	Device           DeviceInfo
	SecurityFlags    []string
	CreatedAt        time.Time
	LastActivityAt   time.Time
	IdleTimeoutAt    time.Time
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	RevokeReason     string
}

// Terminal reports whether the session reached a final state.
// EXPIRED and REVOKED never transition back to ACTIVE.
func (s Session) Terminal() bool { return s.Status != SessionStatusActive }

// ExpiredByClock reports whether either expiry boundary has been crossed,
// regardless of the persisted status. Validation lazily reconciles the two.
func (s Session) ExpiredByClock(now time.Time) bool {
	return now.After(s.ExpiresAt) || now.After(s.IdleTimeoutAt)
}

// HasSecurityFlag reports whether an anomaly tag is already present.
func (s Session) HasSecurityFlag(flag string) bool {
	for _, f := range s.SecurityFlags {
		if f == flag {
			return true
		}
	}
	return false
}
