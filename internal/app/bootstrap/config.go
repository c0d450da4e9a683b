package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the authcore service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int

	DatabaseURL string
	RedisURL    string
	MaxDBConns  int32

	JWTAccessSecret      string
	JWTRefreshSecret     string
	JWTFingerprintSalt   string
	JWTIssuer            string
	JWTAudience          string
	AllowEphemeralJWT    bool
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration

	BcryptCost int

	DefaultRole           string
	MaxConcurrentSessions int
	SessionAbsoluteTTL    time.Duration
	SessionIdleTimeout    time.Duration
	AnomalyWindow         time.Duration
	SessionCleanupPeriod  time.Duration

	LoginRateLimit       int
	LoginRateWindow      time.Duration
	ValidationRateLimit  int
	ValidationRateWindow time.Duration
	ValidationCacheTTL   time.Duration

	OfflineCodeSecret string

	EventBuffer int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Auth struct {
		DefaultRole           string `yaml:"default_role"`
		MaxConcurrentSessions int    `yaml:"max_concurrent_sessions"`
	} `yaml:"auth"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:             "authcore",
		HTTPPort:              8080,
		MaxDBConns:            20,
		AllowEphemeralJWT:     true,
		AccessTokenTTL:        15 * time.Minute,
		RefreshTokenTTL:       7 * 24 * time.Hour,
		JWTIssuer:             "authcore",
		JWTAudience:           "authcore-clients",
		BcryptCost:            12,
		DefaultRole:           "USER",
		MaxConcurrentSessions: 5,
		SessionAbsoluteTTL:    24 * time.Hour,
		SessionIdleTimeout:    30 * time.Minute,
		AnomalyWindow:         2 * time.Hour,
		SessionCleanupPeriod:  5 * time.Minute,
		LoginRateLimit:        10,
		LoginRateWindow:       15 * time.Minute,
		ValidationRateLimit:   60,
		ValidationRateWindow:  time.Hour,
		ValidationCacheTTL:    time.Minute,
		EventBuffer:           64,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Auth.DefaultRole != "" {
			cfg.DefaultRole = f.Auth.DefaultRole
		}
		if f.Auth.MaxConcurrentSessions > 0 {
			cfg.MaxConcurrentSessions = f.Auth.MaxConcurrentSessions
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.JWTAccessSecret = envOrDefault("JWT_ACCESS_SECRET", cfg.JWTAccessSecret)
	cfg.JWTRefreshSecret = envOrDefault("JWT_REFRESH_SECRET", cfg.JWTRefreshSecret)
	cfg.JWTFingerprintSalt = envOrDefault("JWT_FINGERPRINT_SALT", cfg.JWTFingerprintSalt)
	cfg.JWTIssuer = envOrDefault("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTAudience = envOrDefault("JWT_AUDIENCE", cfg.JWTAudience)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)
	cfg.OfflineCodeSecret = envOrDefault("OFFLINE_CODE_SECRET", cfg.OfflineCodeSecret)
	cfg.DefaultRole = envOrDefault("DEFAULT_ROLE", cfg.DefaultRole)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.MaxConcurrentSessions = envInt("MAX_CONCURRENT_SESSIONS", cfg.MaxConcurrentSessions)
	cfg.LoginRateLimit = envInt("LOGIN_RATE_LIMIT", cfg.LoginRateLimit)
	cfg.ValidationRateLimit = envInt("VALIDATION_RATE_LIMIT", cfg.ValidationRateLimit)
	cfg.EventBuffer = envInt("EVENT_BUFFER", cfg.EventBuffer)

	cfg.AccessTokenTTL = time.Duration(envInt("ACCESS_TOKEN_TTL_MINUTES", int(cfg.AccessTokenTTL.Minutes()))) * time.Minute
	cfg.RefreshTokenTTL = time.Duration(envInt("REFRESH_TOKEN_TTL_HOURS", int(cfg.RefreshTokenTTL.Hours()))) * time.Hour
	cfg.SessionAbsoluteTTL = time.Duration(envInt("SESSION_ABSOLUTE_HOURS", int(cfg.SessionAbsoluteTTL.Hours()))) * time.Hour
	cfg.SessionIdleTimeout = time.Duration(envInt("SESSION_IDLE_MINUTES", int(cfg.SessionIdleTimeout.Minutes()))) * time.Minute
	cfg.AnomalyWindow = time.Duration(envInt("ANOMALY_WINDOW_HOURS", int(cfg.AnomalyWindow.Hours()))) * time.Hour
	cfg.SessionCleanupPeriod = time.Duration(envInt("SESSION_CLEANUP_SECONDS", int(cfg.SessionCleanupPeriod.Seconds()))) * time.Second
	cfg.LoginRateWindow = time.Duration(envInt("LOGIN_RATE_WINDOW_SECONDS", int(cfg.LoginRateWindow.Seconds()))) * time.Second
	cfg.ValidationRateWindow = time.Duration(envInt("VALIDATION_RATE_WINDOW_SECONDS", int(cfg.ValidationRateWindow.Seconds()))) * time.Second
	cfg.ValidationCacheTTL = time.Duration(envInt("VALIDATION_CACHE_TTL_SECONDS", int(cfg.ValidationCacheTTL.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if (cfg.JWTAccessSecret == "" || cfg.JWTRefreshSecret == "") && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_ACCESS_SECRET or JWT_REFRESH_SECRET")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
