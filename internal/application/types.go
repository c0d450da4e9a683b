package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/dcaplatform/authcore/internal/domain"
	"github.com/dcaplatform/authcore/internal/keycodec"
	"github.com/dcaplatform/authcore/internal/ports"
)

func utcNow() time.Time { return time.Now().UTC() }

// Config carries the tunable policy shared by the application services.
type Config struct {
	ServiceName string

	DefaultRole string

	MaxConcurrentSessions int
	SessionAbsoluteTTL    time.Duration
	SessionIdleTimeout    time.Duration
	AnomalyWindow         time.Duration

	LoginRateLimit      int
	LoginRateWindow     time.Duration
	ValidationRateLimit int
	ValidationRateWindow time.Duration

	ValidationCacheTTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = "authcore"
	}
	if c.DefaultRole == "" {
		c.DefaultRole = "USER"
	}
	if c.MaxConcurrentSessions <= 0 {
		c.MaxConcurrentSessions = 5
	}
	if c.SessionAbsoluteTTL <= 0 {
		c.SessionAbsoluteTTL = 24 * time.Hour
	}
	if c.SessionIdleTimeout <= 0 {
		c.SessionIdleTimeout = 30 * time.Minute
	}
	if c.AnomalyWindow <= 0 {
		c.AnomalyWindow = 2 * time.Hour
	}
	if c.LoginRateLimit <= 0 {
		c.LoginRateLimit = 10
	}
	if c.LoginRateWindow <= 0 {
		c.LoginRateWindow = 15 * time.Minute
	}
	if c.ValidationRateLimit <= 0 {
		c.ValidationRateLimit = 60
	}
	if c.ValidationRateWindow <= 0 {
		c.ValidationRateWindow = time.Hour
	}
	if c.ValidationCacheTTL <= 0 {
		c.ValidationCacheTTL = time.Minute
	}
	return c
}

type RegisterRequest struct {
	Email         string            `json:"email"`
	Username      string            `json:"username"`
	DiscordID     string            `json:"discord_id,omitempty"`
	Password      string            `json:"password,omitempty"`
	TermsAccepted bool              `json:"terms_accepted"`
	Fingerprint   string            `json:"fingerprint,omitempty"`
	Device        domain.DeviceInfo `json:"device"`
}

type RegisterResponse struct {
	UserID    uuid.UUID        `json:"user_id"`
	SessionID uuid.UUID        `json:"session_id,omitempty"`
	Tokens    *ports.TokenPair `json:"tokens,omitempty"`
}

type LoginRequest struct {
	Identifier  string            `json:"identifier"`
	Password    string            `json:"password"`
	Fingerprint string            `json:"fingerprint,omitempty"`
	Device      domain.DeviceInfo `json:"device"`
}

type LoginResponse struct {
	UserID    uuid.UUID       `json:"user_id"`
	SessionID uuid.UUID       `json:"session_id"`
	Tokens    ports.TokenPair `json:"tokens"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	Fingerprint  string `json:"fingerprint,omitempty"`
}

type RefreshResponse struct {
	SessionID uuid.UUID       `json:"session_id"`
	Tokens    ports.TokenPair `json:"tokens"`
}

// ValidateOptions selects which session checks run and whether a successful
// validation slides the idle window.
type ValidateOptions struct {
	CheckExpiry    bool
	CheckIdle      bool
	UpdateActivity bool
}

// Session validation rejection reasons.
const (
	SessionReasonInvalid    = "invalid"
	SessionReasonRevoked    = "revoked"
	SessionReasonExpired    = "expired"
	SessionReasonSuspicious = "suspicious"
)

type SessionValidation struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Anomaly tags appended to a session's security flags.
const (
	AnomalyRapidLocationChanges   = "rapid_location_changes"
	AnomalyMultipleIPAddresses    = "multiple_ip_addresses"
	AnomalyUnusualActivityPattern = "unusual_activity_pattern"
)

// License validation reason codes. The empty code means valid.
const (
	CodeKeyNotFound           = "KEY_NOT_FOUND"
	CodeKeyInactive           = "KEY_INACTIVE"
	CodeKeySuspended          = "KEY_SUSPENDED"
	CodeKeyRevoked            = "KEY_REVOKED"
	CodeKeyExpired            = "KEY_EXPIRED"
	CodeKeyExhausted          = "KEY_EXHAUSTED"
	CodeKeyNotYetValid        = "KEY_NOT_YET_VALID"
	CodeIPNotAllowed          = "IP_NOT_ALLOWED"
	CodeHardwareIDRequired    = "HARDWARE_ID_REQUIRED"
	CodeMaxActivationsReached = "MAX_ACTIVATIONS_REACHED"
	CodeActivationDeactivated = "ACTIVATION_DEACTIVATED"
)

type ValidateLicenseInput struct {
	Key        string `json:"key"`
	HardwareID string `json:"hardware_id,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
}

// LicenseValidation is the pipeline outcome. ExpiresIn is nil for
// perpetual keys.
type LicenseValidation struct {
	Valid                bool            `json:"valid"`
	Code                 string          `json:"code,omitempty"`
	InGracePeriod        bool            `json:"in_grace_period,omitempty"`
	RequiresActivation   bool            `json:"requires_activation,omitempty"`
	RemainingActivations int             `json:"remaining_activations"`
	ExpiresIn            *int64          `json:"expires_in,omitempty"`
	Features             map[string]bool `json:"features,omitempty"`
	Metadata             domain.Metadata `json:"metadata,omitempty"`
}

type ActivateLicenseInput struct {
	Key        string `json:"key"`
	HardwareID string `json:"hardware_id"`
	DeviceName string `json:"device_name,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
}

type ActivateLicenseResult struct {
	Activation           domain.Activation `json:"activation"`
	RemainingActivations int               `json:"remaining_activations"`
	OfflineCode          string            `json:"offline_code"`
}

type IssueLicenseInput struct {
	UserID             uuid.UUID       `json:"user_id"`
	Type               domain.LicenseType `json:"type"`
	MaxActivations     int             `json:"max_activations"`
	ValidFrom          *time.Time      `json:"valid_from,omitempty"`
	ExpiresAt          *time.Time      `json:"expires_at,omitempty"`
	GracePeriodDays    int             `json:"grace_period_days,omitempty"`
	IPWhitelist        []string        `json:"ip_whitelist,omitempty"`
	RequiresHardwareID bool            `json:"requires_hardware_id,omitempty"`
	Features           map[string]bool `json:"features,omitempty"`
	Metadata           domain.Metadata `json:"metadata,omitempty"`
	KeyOptions         keycodec.Options `json:"-"`
}

// ValidationStats summarizes the audit trail over a rolling window.
type ValidationStats struct {
	Total           int            `json:"total"`
	Successes       int            `json:"successes"`
	SuccessRate     float64        `json:"success_rate"`
	UniqueHardware  int            `json:"unique_hardware"`
	UniqueIPs       int            `json:"unique_ips"`
	FailureReasons  map[string]int `json:"failure_reasons"`
}
