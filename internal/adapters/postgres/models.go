package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email         string    `gorm:"column:email"`
	Username      string    `gorm:"column:username"`
	DiscordID     *string   `gorm:"column:discord_id"`
	Status        string    `gorm:"column:status"`
	Roles         string    `gorm:"column:roles;type:jsonb"`
	PasswordHash  string    `gorm:"column:password_hash"`
	EmailVerified bool      `gorm:"column:email_verified"`
	Metadata      string    `gorm:"column:metadata;type:jsonb"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type sessionModel struct {
	SessionID        uuid.UUID  `gorm:"column:session_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID  `gorm:"column:user_id"`
	Status           string     `gorm:"column:status"`
	RefreshTokenHash string     `gorm:"column:refresh_token_hash"`
	AccessTokenHash  string     `gorm:"column:access_token_hash"`
	TokenFamilyID    uuid.UUID  `gorm:"column:token_family_id"`
	DeviceType       string     `gorm:"column:device_type"`
	FingerprintHash  string     `gorm:"column:fingerprint_hash"`
	UserAgent        string     `gorm:"column:user_agent"`
	IPAddress        *string    `gorm:"column:ip_address"`
	Location         string     `gorm:"column:location"`
	SecurityFlags    string     `gorm:"column:security_flags;type:jsonb"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	LastActivityAt   time.Time  `gorm:"column:last_activity_at"`
	IdleTimeoutAt    time.Time  `gorm:"column:idle_timeout_at"`
	ExpiresAt        time.Time  `gorm:"column:expires_at"`
	RevokedAt        *time.Time `gorm:"column:revoked_at"`
	RevokeReason     string     `gorm:"column:revoke_reason"`
}

func (sessionModel) TableName() string { return "sessions" }

type loginAttemptModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	UserID        *uuid.UUID `gorm:"column:user_id"`
	Identifier    string     `gorm:"column:identifier"`
	AttemptAt     time.Time  `gorm:"column:attempt_at"`
	IPAddress     *string    `gorm:"column:ip_address"`
	UserAgent     string     `gorm:"column:user_agent"`
	Success       bool       `gorm:"column:success"`
	FailureReason string     `gorm:"column:failure_reason"`
}

func (loginAttemptModel) TableName() string { return "login_attempts" }

type licenseModel struct {
	LicenseID          uuid.UUID  `gorm:"column:license_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Key                string     `gorm:"column:key"`
	Type               string     `gorm:"column:type"`
	Status             string     `gorm:"column:status"`
	UserID             uuid.UUID  `gorm:"column:user_id"`
	MaxActivations     int        `gorm:"column:max_activations"`
	CurrentActivations int        `gorm:"column:current_activations"`
	ValidFrom          *time.Time `gorm:"column:valid_from"`
	ExpiresAt          *time.Time `gorm:"column:expires_at"`
	GracePeriodDays    int        `gorm:"column:grace_period_days"`
	IPWhitelist        string     `gorm:"column:ip_whitelist;type:jsonb"`
	RequiresHardwareID bool       `gorm:"column:requires_hardware_id"`
	Features           string     `gorm:"column:features;type:jsonb"`
	Metadata           string     `gorm:"column:metadata;type:jsonb"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (licenseModel) TableName() string { return "license_keys" }

type activationModel struct {
	ActivationID  uuid.UUID  `gorm:"column:activation_id;type:uuid;default:gen_random_uuid();primaryKey"`
	LicenseID     uuid.UUID  `gorm:"column:license_id"`
	HardwareID    string     `gorm:"column:hardware_id"`
	DeviceName    string     `gorm:"column:device_name"`
	IPAddress     string     `gorm:"column:ip_address"`
	Status        string     `gorm:"column:status"`
	ActivatedAt   time.Time  `gorm:"column:activated_at"`
	LastSeenAt    time.Time  `gorm:"column:last_seen_at"`
	DeactivatedAt *time.Time `gorm:"column:deactivated_at"`
}

func (activationModel) TableName() string { return "activations" }

type keyValidationModel struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LicenseID  *uuid.UUID `gorm:"column:license_id"`
	Key        string     `gorm:"column:key"`
	Valid      bool       `gorm:"column:valid"`
	ReasonCode string     `gorm:"column:reason_code"`
	HardwareID string     `gorm:"column:hardware_id"`
	IPAddress  string     `gorm:"column:ip_address"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (keyValidationModel) TableName() string { return "key_validations" }
