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
	"github.com/dcaplatform/authcore/internal/keycodec"
	"github.com/dcaplatform/authcore/internal/ports"
)

// LicenseService owns issuance, the validation pipeline, and the activation
// protocol for license keys.
type LicenseService struct {
	cfg         Config
	licenses    ports.LicenseRepository
	activations ports.ActivationRepository
	audit       ports.AuditRepository
	cache       ports.ValidationCache
	limiter     ports.RateLimiter
	events      ports.EventPublisher
	offline     *keycodec.OfflineCodec
	nowFn       func() time.Time
}

type LicenseServiceDependencies struct {
	Config      Config
	Licenses    ports.LicenseRepository
	Activations ports.ActivationRepository
	Audit       ports.AuditRepository
	Cache       ports.ValidationCache
	Limiter     ports.RateLimiter
	Events      ports.EventPublisher
	Offline     *keycodec.OfflineCodec
}

func NewLicenseService(deps LicenseServiceDependencies) *LicenseService {
	return &LicenseService{
		cfg:         deps.Config.withDefaults(),
		licenses:    deps.Licenses,
		activations: deps.Activations,
		audit:       deps.Audit,
		cache:       deps.Cache,
		limiter:     deps.Limiter,
		events:      deps.Events,
		offline:     deps.Offline,
		nowFn:       utcNow,
	}
}

// Issue creates one new license key with a freshly generated, unique key
// string.
func (s *LicenseService) Issue(ctx context.Context, in IssueLicenseInput) (domain.LicenseKey, error) {
	if in.MaxActivations <= 0 {
		return domain.LicenseKey{}, fmt.Errorf("%w: max activations must be positive", domain.ErrInvalidInput)
	}

	key, err := s.uniqueKey(ctx, in.KeyOptions)
	if err != nil {
		return domain.LicenseKey{}, err
	}

	now := s.nowFn()
	license := domain.LicenseKey{
		LicenseID:          uuid.New(),
		Key:                key,
		Type:               in.Type,
		Status:             domain.LicenseStatusActive,
		UserID:             in.UserID,
		MaxActivations:     in.MaxActivations,
		ValidFrom:          in.ValidFrom,
		ExpiresAt:          in.ExpiresAt,
		GracePeriodDays:    in.GracePeriodDays,
		IPWhitelist:        in.IPWhitelist,
		RequiresHardwareID: in.RequiresHardwareID,
		Features:           in.Features,
		Metadata:           in.Metadata.Clone(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	created, err := s.licenses.Create(ctx, license)
	if err != nil {
		return domain.LicenseKey{}, fmt.Errorf("create license: %w", err)
	}
	s.publish(ctx, ports.EventLicenseCreated, map[string]any{
		"license_id": created.LicenseID.String(),
		"user_id":    created.UserID.String(),
		"type":       string(created.Type),
	})
	return created, nil
}

// IssueBatch creates count licenses sharing one policy. Keys are generated
// as a mutually unique batch before any row is written.
func (s *LicenseService) IssueBatch(ctx context.Context, count int, in IssueLicenseInput) ([]domain.LicenseKey, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: batch count must be positive", domain.ErrInvalidInput)
	}
	keys, err := keycodec.GenerateBatch(count, in.KeyOptions, nil)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	out := make([]domain.LicenseKey, 0, count)
	for _, key := range keys {
		exists, err := s.licenses.KeyExists(ctx, key)
		if err != nil {
			return out, fmt.Errorf("check key uniqueness: %w", err)
		}
		if exists {
			if key, err = s.uniqueKey(ctx, in.KeyOptions); err != nil {
				return out, err
			}
		}
		license := domain.LicenseKey{
			LicenseID:          uuid.New(),
			Key:                key,
			Type:               in.Type,
			Status:             domain.LicenseStatusActive,
			UserID:             in.UserID,
			MaxActivations:     in.MaxActivations,
			ValidFrom:          in.ValidFrom,
			ExpiresAt:          in.ExpiresAt,
			GracePeriodDays:    in.GracePeriodDays,
			IPWhitelist:        in.IPWhitelist,
			RequiresHardwareID: in.RequiresHardwareID,
			Features:           in.Features,
			Metadata:           in.Metadata.Clone(),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		created, err := s.licenses.Create(ctx, license)
		if err != nil {
			return out, fmt.Errorf("create license %d of %d: %w", len(out)+1, count, err)
		}
		out = append(out, created)
	}
	return out, nil
}

func (s *LicenseService) uniqueKey(ctx context.Context, opts keycodec.Options) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		key, err := keycodec.Generate(opts)
		if err != nil {
			return "", err
		}
		exists, err := s.licenses.KeyExists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check key uniqueness: %w", err)
		}
		if !exists {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate unique key", domain.ErrConflict)
}

// Validate runs the ordered check pipeline for one key. The first failing
// check determines the reason code. Every attempt is recorded in the audit
// trail, including cache fast-path hits; audit failures are logged and do
// not affect the result.
func (s *LicenseService) Validate(ctx context.Context, in ValidateLicenseInput) (LicenseValidation, error) {
	if s.limiter != nil && in.IPAddress != "" {
		allowed, err := s.limiter.Allow(ctx, "license:validate:"+in.IPAddress, s.cfg.ValidationRateLimit, s.cfg.ValidationRateWindow)
		if err != nil {
			slog.Default().WarnContext(ctx, "validation rate limiter unavailable",
				"service", s.cfg.ServiceName,
				"module", "application",
				"layer", "application",
				"operation", "license_validate",
				"outcome", "warning",
				"error", err,
			)
		} else if !allowed {
			return LicenseValidation{}, domain.ErrRateLimited
		}
	}

	license, err := s.licenses.GetByKey(ctx, in.Key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.appendAudit(ctx, domain.KeyValidation{
				ID:         uuid.New(),
				Key:        in.Key,
				Valid:      false,
				ReasonCode: CodeKeyNotFound,
				HardwareID: in.HardwareID,
				IPAddress:  in.IPAddress,
				CreatedAt:  s.nowFn(),
			})
			return LicenseValidation{Valid: false, Code: CodeKeyNotFound}, nil
		}
		return LicenseValidation{}, fmt.Errorf("load license: %w", err)
	}

	if cached := s.cacheLookup(ctx, license, in); cached != nil {
		s.appendAudit(ctx, domain.KeyValidation{
			ID:         uuid.New(),
			LicenseID:  license.LicenseID,
			Key:        license.Key,
			Valid:      true,
			HardwareID: in.HardwareID,
			IPAddress:  in.IPAddress,
			CreatedAt:  s.nowFn(),
		})
		cached.Features = license.Features
		cached.Metadata = license.Metadata
		return *cached, nil
	}

	result, err := s.runPipeline(ctx, license, in)
	if err != nil {
		return LicenseValidation{}, err
	}

	s.appendAudit(ctx, domain.KeyValidation{
		ID:         uuid.New(),
		LicenseID:  license.LicenseID,
		Key:        license.Key,
		Valid:      result.Valid,
		ReasonCode: result.Code,
		HardwareID: in.HardwareID,
		IPAddress:  in.IPAddress,
		CreatedAt:  s.nowFn(),
	})

	if result.Valid {
		s.cacheStore(ctx, license, in, result)
	}
	return result, nil
}

// runPipeline applies the checks in a fixed order: status, time window,
// IP allowlist, hardware binding. The first failure wins. A non-nil error
// means a collaborator failed, not that the key is invalid.
func (s *LicenseService) runPipeline(ctx context.Context, license domain.LicenseKey, in ValidateLicenseInput) (LicenseValidation, error) {
	now := s.nowFn()
	result := LicenseValidation{
		RemainingActivations: license.RemainingActivations(),
		Features:             license.Features,
		Metadata:             license.Metadata,
	}

	switch license.Status {
	case domain.LicenseStatusActive:
	case domain.LicenseStatusInactive:
		result.Code = CodeKeyInactive
		return result, nil
	case domain.LicenseStatusSuspended:
		result.Code = CodeKeySuspended
		return result, nil
	case domain.LicenseStatusRevoked:
		result.Code = CodeKeyRevoked
		return result, nil
	case domain.LicenseStatusExpired:
		// An expired status still honors the grace window; the time-window
		// block below flags the result when the key falls through.
		if !license.InGracePeriod(now) {
			result.Code = CodeKeyExpired
			return result, nil
		}
	case domain.LicenseStatusExhausted:
		result.Code = CodeKeyExhausted
		return result, nil
	default:
		result.Code = CodeKeyInactive
		return result, nil
	}

	if license.ValidFrom != nil && now.Before(*license.ValidFrom) {
		result.Code = CodeKeyNotYetValid
		return result, nil
	}
	if license.ExpiresAt != nil {
		if now.After(*license.ExpiresAt) {
			if !license.InGracePeriod(now) {
				result.Code = CodeKeyExpired
				return result, nil
			}
			result.InGracePeriod = true
		}
		remaining := int64(license.ExpiresAt.Sub(now).Seconds())
		result.ExpiresIn = &remaining
	}

	if len(license.IPWhitelist) > 0 && !ipAllowed(in.IPAddress, license.IPWhitelist) {
		result.Code = CodeIPNotAllowed
		return result, nil
	}

	if license.RequiresHardwareID || in.HardwareID != "" {
		if in.HardwareID == "" {
			result.Code = CodeHardwareIDRequired
			return result, nil
		}
		activation, err := s.activations.Find(ctx, license.LicenseID, in.HardwareID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			if license.RemainingActivations() == 0 {
				result.Code = CodeMaxActivationsReached
				return result, nil
			}
			result.RequiresActivation = true
		case err != nil:
			return LicenseValidation{}, fmt.Errorf("load activation: %w", err)
		case activation.Status == domain.ActivationStatusDeactivated:
			result.Code = CodeActivationDeactivated
			return result, nil
		default:
			activation.LastSeenAt = now
			if in.IPAddress != "" {
				activation.IPAddress = in.IPAddress
			}
			if err := s.activations.Update(ctx, activation); err != nil {
				slog.Default().WarnContext(ctx, "activation heartbeat write failed",
					"service", s.cfg.ServiceName,
					"module", "application",
					"layer", "application",
					"operation", "license_validate",
					"outcome", "warning",
					"license_id", license.LicenseID,
					"error", err,
				)
			}
		}
	}

	result.Valid = true
	return result, nil
}

// ipAllowed matches an address against the allowlist. Entries may end with
// a "*" wildcard matching any suffix, e.g. "10.0.*".
func ipAllowed(ip string, allowlist []string) bool {
	if ip == "" {
		return false
	}
	for _, entry := range allowlist {
		if entry == ip {
			return true
		}
		if prefix, ok := strings.CutSuffix(entry, "*"); ok && strings.HasPrefix(ip, prefix) {
			return true
		}
	}
	return false
}

// Activate binds the key to a hardware id, consuming one quota slot. The
// operation is idempotent for an already-active pair and re-uses a
// deactivated row without consuming additional quota. The quota gate is the
// store's atomic conditional increment, so concurrent activations cannot
// oversubscribe.
func (s *LicenseService) Activate(ctx context.Context, in ActivateLicenseInput) (ActivateLicenseResult, error) {
	if in.HardwareID == "" {
		return ActivateLicenseResult{}, fmt.Errorf("%w: hardware id is required", domain.ErrInvalidInput)
	}

	license, err := s.licenses.GetByKey(ctx, in.Key)
	if err != nil {
		return ActivateLicenseResult{}, err
	}
	if license.Status != domain.LicenseStatusActive {
		return ActivateLicenseResult{}, fmt.Errorf("%w: license is %s", domain.ErrUnauthorized, license.Status)
	}
	now := s.nowFn()
	if license.ExpiresAt != nil && now.After(*license.ExpiresAt) && !license.InGracePeriod(now) {
		return ActivateLicenseResult{}, fmt.Errorf("%w: license expired", domain.ErrUnauthorized)
	}

	existing, err := s.activations.Find(ctx, license.LicenseID, in.HardwareID)
	switch {
	case err == nil && existing.Status == domain.ActivationStatusActive:
		existing.LastSeenAt = now
		if in.IPAddress != "" {
			existing.IPAddress = in.IPAddress
		}
		if err := s.activations.Update(ctx, existing); err != nil {
			return ActivateLicenseResult{}, fmt.Errorf("refresh activation: %w", err)
		}
		return s.activationResult(license, existing, license.RemainingActivations()), nil
	case err == nil && existing.Status == domain.ActivationStatusDeactivated:
		ok, err := s.licenses.IncrementActivationsIfBelow(ctx, license.LicenseID, now)
		if err != nil {
			return ActivateLicenseResult{}, fmt.Errorf("claim activation slot: %w", err)
		}
		if !ok {
			s.notifyLimitReached(ctx, license)
			return ActivateLicenseResult{}, domain.ErrMaxActivationsReached
		}
		existing.Status = domain.ActivationStatusActive
		existing.DeviceName = in.DeviceName
		existing.IPAddress = in.IPAddress
		existing.ActivatedAt = now
		existing.LastSeenAt = now
		existing.DeactivatedAt = nil
		if err := s.activations.Update(ctx, existing); err != nil {
			s.compensateSlot(ctx, license.LicenseID)
			return ActivateLicenseResult{}, fmt.Errorf("reactivate binding: %w", err)
		}
		s.afterActivate(ctx, license, existing)
		return s.activationResult(license, existing, license.RemainingActivations()-1), nil
	case errors.Is(err, domain.ErrNotFound):
		// fall through to fresh activation
	default:
		return ActivateLicenseResult{}, fmt.Errorf("find activation: %w", err)
	}

	ok, err := s.licenses.IncrementActivationsIfBelow(ctx, license.LicenseID, now)
	if err != nil {
		return ActivateLicenseResult{}, fmt.Errorf("claim activation slot: %w", err)
	}
	if !ok {
		s.notifyLimitReached(ctx, license)
		return ActivateLicenseResult{}, domain.ErrMaxActivationsReached
	}

	activation := domain.Activation{
		ActivationID: uuid.New(),
		LicenseID:    license.LicenseID,
		HardwareID:   in.HardwareID,
		DeviceName:   in.DeviceName,
		IPAddress:    in.IPAddress,
		Status:       domain.ActivationStatusActive,
		ActivatedAt:  now,
		LastSeenAt:   now,
	}
	created, err := s.activations.Create(ctx, activation)
	if err != nil {
		s.compensateSlot(ctx, license.LicenseID)
		return ActivateLicenseResult{}, fmt.Errorf("create activation: %w", err)
	}
	s.afterActivate(ctx, license, created)
	return s.activationResult(license, created, license.RemainingActivations()-1), nil
}

func (s *LicenseService) activationResult(license domain.LicenseKey, activation domain.Activation, remaining int) ActivateLicenseResult {
	if remaining < 0 {
		remaining = 0
	}
	result := ActivateLicenseResult{
		Activation:           activation,
		RemainingActivations: remaining,
	}
	if s.offline != nil {
		result.OfflineCode = s.offline.Code(license.Key, activation.HardwareID)
	}
	return result
}

func (s *LicenseService) afterActivate(ctx context.Context, license domain.LicenseKey, activation domain.Activation) {
	s.cacheInvalidate(ctx, license.Key)
	s.publish(ctx, ports.EventLicenseActivated, map[string]any{
		"license_id":  license.LicenseID.String(),
		"hardware_id": activation.HardwareID,
		"user_id":     license.UserID.String(),
	})
}

func (s *LicenseService) compensateSlot(ctx context.Context, licenseID uuid.UUID) {
	if err := s.licenses.DecrementActivations(ctx, licenseID, s.nowFn()); err != nil {
		slog.Default().ErrorContext(ctx, "activation slot compensation failed",
			"service", s.cfg.ServiceName,
			"module", "application",
			"layer", "application",
			"operation", "license_activate",
			"outcome", "error",
			"license_id", licenseID,
			"error", err,
		)
	}
}

func (s *LicenseService) notifyLimitReached(ctx context.Context, license domain.LicenseKey) {
	s.publish(ctx, ports.EventActivationLimitReached, map[string]any{
		"license_id":      license.LicenseID.String(),
		"user_id":         license.UserID.String(),
		"max_activations": license.MaxActivations,
	})
}

// Deactivate releases the (license, hardware) binding and frees one quota
// slot. Deactivating an already-deactivated binding is a no-op.
func (s *LicenseService) Deactivate(ctx context.Context, key, hardwareID string) error {
	license, err := s.licenses.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	activation, err := s.activations.Find(ctx, license.LicenseID, hardwareID)
	if err != nil {
		return err
	}
	if activation.Status == domain.ActivationStatusDeactivated {
		return nil
	}

	now := s.nowFn()
	activation.Status = domain.ActivationStatusDeactivated
	activation.DeactivatedAt = &now
	if err := s.activations.Update(ctx, activation); err != nil {
		return fmt.Errorf("deactivate binding: %w", err)
	}
	if err := s.licenses.DecrementActivations(ctx, license.LicenseID, now); err != nil {
		return fmt.Errorf("release activation slot: %w", err)
	}
	s.cacheInvalidate(ctx, license.Key)
	s.publish(ctx, ports.EventLicenseDeactivated, map[string]any{
		"license_id":  license.LicenseID.String(),
		"hardware_id": hardwareID,
	})
	return nil
}

// Revoke permanently invalidates the key. Revocation is terminal; the key
// never validates again.
func (s *LicenseService) Revoke(ctx context.Context, key, reason string) error {
	license, err := s.licenses.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	if license.Status == domain.LicenseStatusRevoked {
		return nil
	}
	license.Status = domain.LicenseStatusRevoked
	license.UpdatedAt = s.nowFn()
	if err := s.licenses.Update(ctx, license); err != nil {
		return fmt.Errorf("revoke license: %w", err)
	}
	s.cacheInvalidate(ctx, license.Key)
	s.publish(ctx, ports.EventLicenseRevoked, map[string]any{
		"license_id": license.LicenseID.String(),
		"reason":     reason,
	})
	return nil
}

// Suspend temporarily disables the key. Suspension is reversible through
// Reactivate; revoked keys cannot be suspended.
func (s *LicenseService) Suspend(ctx context.Context, key string) error {
	return s.transition(ctx, key, domain.LicenseStatusSuspended, func(current domain.LicenseStatus) bool {
		return current == domain.LicenseStatusActive || current == domain.LicenseStatusInactive
	})
}

// Reactivate returns a suspended or inactive key to ACTIVE. Revoked keys
// stay revoked.
func (s *LicenseService) Reactivate(ctx context.Context, key string) error {
	return s.transition(ctx, key, domain.LicenseStatusActive, func(current domain.LicenseStatus) bool {
		return current == domain.LicenseStatusSuspended || current == domain.LicenseStatusInactive
	})
}

func (s *LicenseService) transition(ctx context.Context, key string, target domain.LicenseStatus, allowed func(domain.LicenseStatus) bool) error {
	license, err := s.licenses.GetByKey(ctx, key)
	if err != nil {
		return err
	}
	if license.Status == target {
		return nil
	}
	if !allowed(license.Status) {
		return fmt.Errorf("%w: cannot transition %s license to %s", domain.ErrConflict, license.Status, target)
	}
	license.Status = target
	license.UpdatedAt = s.nowFn()
	if err := s.licenses.Update(ctx, license); err != nil {
		return fmt.Errorf("update license status: %w", err)
	}
	s.cacheInvalidate(ctx, license.Key)
	return nil
}

// OfflineCode returns the activation-proof code for a key/hardware pair.
func (s *LicenseService) OfflineCode(key, hardwareID string) (string, error) {
	if s.offline == nil {
		return "", fmt.Errorf("%w: offline codes not configured", domain.ErrInvalidInput)
	}
	return s.offline.Code(key, hardwareID), nil
}

// VerifyOfflineCode checks a code without any store access.
func (s *LicenseService) VerifyOfflineCode(key, hardwareID, code string) bool {
	if s.offline == nil {
		return false
	}
	return s.offline.Verify(key, hardwareID, code)
}

// Stats summarizes the key's audit trail since the given time.
func (s *LicenseService) Stats(ctx context.Context, key string, since time.Time) (ValidationStats, error) {
	license, err := s.licenses.GetByKey(ctx, key)
	if err != nil {
		return ValidationStats{}, err
	}
	records, err := s.audit.ListKeyValidationsSince(ctx, license.LicenseID, since)
	if err != nil {
		return ValidationStats{}, fmt.Errorf("list audit records: %w", err)
	}

	stats := ValidationStats{FailureReasons: map[string]int{}}
	hardware := map[string]struct{}{}
	ips := map[string]struct{}{}
	for _, r := range records {
		stats.Total++
		if r.Valid {
			stats.Successes++
		} else if r.ReasonCode != "" {
			stats.FailureReasons[r.ReasonCode]++
		}
		if r.HardwareID != "" {
			hardware[r.HardwareID] = struct{}{}
		}
		if r.IPAddress != "" {
			ips[r.IPAddress] = struct{}{}
		}
	}
	stats.UniqueHardware = len(hardware)
	stats.UniqueIPs = len(ips)
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Successes) / float64(stats.Total)
	}
	return stats, nil
}

func (s *LicenseService) cacheKey(license domain.LicenseKey, in ValidateLicenseInput) string {
	return "license:validation:" + license.Key + ":" + in.HardwareID
}

func (s *LicenseService) cacheLookup(ctx context.Context, license domain.LicenseKey, in ValidateLicenseInput) *LicenseValidation {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, s.cacheKey(license, in))
	if err != nil || cached == nil || !cached.Valid {
		return nil
	}
	return &LicenseValidation{
		Valid:                true,
		InGracePeriod:        cached.InGracePeriod,
		RequiresActivation:   cached.RequiresActivation,
		RemainingActivations: cached.RemainingActivations,
		ExpiresIn:            cached.ExpiresIn,
	}
}

func (s *LicenseService) cacheStore(ctx context.Context, license domain.LicenseKey, in ValidateLicenseInput, result LicenseValidation) {
	if s.cache == nil {
		return
	}
	entry := ports.CachedValidation{
		Valid:                result.Valid,
		Code:                 result.Code,
		InGracePeriod:        result.InGracePeriod,
		RequiresActivation:   result.RequiresActivation,
		RemainingActivations: result.RemainingActivations,
		ExpiresIn:            result.ExpiresIn,
		CachedAt:             s.nowFn(),
	}
	if err := s.cache.Put(ctx, s.cacheKey(license, in), entry, s.cfg.ValidationCacheTTL); err != nil {
		slog.Default().WarnContext(ctx, "validation cache write failed",
			"service", s.cfg.ServiceName,
			"module", "application",
			"layer", "application",
			"operation", "license_validate",
			"outcome", "warning",
			"error", err,
		)
	}
}

func (s *LicenseService) cacheInvalidate(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "license:validation:"+key); err != nil {
		slog.Default().WarnContext(ctx, "validation cache invalidation failed",
			"service", s.cfg.ServiceName,
			"module", "application",
			"layer", "application",
			"operation", "license_cache",
			"outcome", "warning",
			"error", err,
		)
	}
}

func (s *LicenseService) appendAudit(ctx context.Context, record domain.KeyValidation) {
	if s.audit == nil {
		return
	}
	if err := s.audit.AppendKeyValidation(ctx, record); err != nil {
		slog.Default().WarnContext(ctx, "key validation audit write failed",
			"service", s.cfg.ServiceName,
			"module", "application",
			"layer", "application",
			"operation", "license_validate",
			"outcome", "warning",
			"license_id", record.LicenseID,
			"error", err,
		)
	}
}

func (s *LicenseService) publish(ctx context.Context, eventType string, payload map[string]any) {
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
