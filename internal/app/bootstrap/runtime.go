package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheadapter "github.com/dcaplatform/authcore/internal/adapters/cache"
	eventadapter "github.com/dcaplatform/authcore/internal/adapters/events"
	httpadapter "github.com/dcaplatform/authcore/internal/adapters/http"
	"github.com/dcaplatform/authcore/internal/adapters/postgres"
	"github.com/dcaplatform/authcore/internal/adapters/security"
	"github.com/dcaplatform/authcore/internal/application"
	"github.com/dcaplatform/authcore/internal/keycodec"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	sessions   *application.SessionManager
	publisher  *eventadapter.ChannelPublisher
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("bootstrapping authcore service", "http_port", cfg.HTTPPort)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.PoolOptions{MaxOpenConns: int(cfg.MaxDBConns)})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	accessSecret, refreshSecret := cfg.JWTAccessSecret, cfg.JWTRefreshSecret
	if accessSecret == "" || refreshSecret == "" {
		logger.Warn("using ephemeral JWT secrets for local/dev runtime")
		if accessSecret, err = randomSecret(); err == nil {
			refreshSecret, err = randomSecret()
		}
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("generate ephemeral jwt secrets: %w", err)
		}
	}

	tokens, err := security.NewJWTTokenService(security.TokenConfig{
		AccessSecret:    []byte(accessSecret),
		RefreshSecret:   []byte(refreshSecret),
		AccessTTL:       cfg.AccessTokenTTL,
		RefreshTTL:      cfg.RefreshTokenTTL,
		Issuer:          cfg.JWTIssuer,
		Audience:        cfg.JWTAudience,
		FingerprintSalt: []byte(cfg.JWTFingerprintSalt),
	})
	if err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init token service: %w", err)
	}

	var offline *keycodec.OfflineCodec
	if cfg.OfflineCodeSecret != "" {
		offline, err = keycodec.NewOfflineCodec([]byte(cfg.OfflineCodeSecret))
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init offline codec: %w", err)
		}
	} else {
		logger.Warn("offline activation codes disabled, OFFLINE_CODE_SECRET not set")
	}

	repos := postgres.NewRepositories(db)
	limiter := cacheadapter.NewRedisRateLimiter(redisClient)
	revocations := cacheadapter.NewRedisSessionRevocationStore(redisClient)
	validationCache := cacheadapter.NewRedisValidationCache(redisClient)
	publisher := eventadapter.NewChannelPublisher(logger, cfg.EventBuffer)

	appCfg := application.Config{
		ServiceName:           cfg.ServiceID,
		DefaultRole:           cfg.DefaultRole,
		MaxConcurrentSessions: cfg.MaxConcurrentSessions,
		SessionAbsoluteTTL:    cfg.SessionAbsoluteTTL,
		SessionIdleTimeout:    cfg.SessionIdleTimeout,
		AnomalyWindow:         cfg.AnomalyWindow,
		LoginRateLimit:        cfg.LoginRateLimit,
		LoginRateWindow:       cfg.LoginRateWindow,
		ValidationRateLimit:   cfg.ValidationRateLimit,
		ValidationRateWindow:  cfg.ValidationRateWindow,
		ValidationCacheTTL:    cfg.ValidationCacheTTL,
	}

	sessions := application.NewSessionManager(application.SessionManagerDependencies{
		Config:      appCfg,
		Sessions:    repos.Sessions,
		Revocations: revocations,
		Events:      publisher,
	})
	auth := application.NewAuthService(application.AuthServiceDependencies{
		Config:   appCfg,
		Users:    repos.Users,
		Attempts: repos.LoginAttempts,
		Hasher:   security.NewCredentialHasher(cfg.BcryptCost),
		Tokens:   tokens,
		Sessions: sessions,
		Limiter:  limiter,
		Events:   publisher,
	})
	licenses := application.NewLicenseService(application.LicenseServiceDependencies{
		Config:      appCfg,
		Licenses:    repos.Licenses,
		Activations: repos.Activations,
		Audit:       repos.Audit,
		Cache:       validationCache,
		Limiter:     limiter,
		Events:      publisher,
		Offline:     offline,
	})

	handler := httpadapter.NewHandler(auth, sessions, licenses)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		sessions:   sessions,
		publisher:  publisher,
		cleanupFn: func(ctx context.Context) {
			publisher.Close()
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go r.consumeEvents(ctx)
	go r.sweepSessions(ctx)

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return nil
}

// consumeEvents drains the in-process event bus into the audit log so
// published domain events are visible even without external subscribers.
func (r *Runtime) consumeEvents(ctx context.Context) {
	events := r.publisher.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			r.logger.Info("domain event",
				"event_type", event.Type,
				"occurred_at", event.OccurredAt,
				"payload", string(event.Payload),
			)
		}
	}
}

// sweepSessions periodically marks clock-crossed sessions as expired.
// Validation expires sessions lazily; the sweep keeps listings honest
// for sessions that are never touched again.
func (r *Runtime) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.SessionCleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := r.sessions.CleanupExpired(ctx)
			if err != nil {
				r.logger.Warn("session sweep failed", "error", err)
				continue
			}
			if count > 0 {
				r.logger.Info("session sweep completed", "expired", count)
			}
		}
	}
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
