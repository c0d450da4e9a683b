package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcaplatform/authcore/internal/domain"
)

type licenseRepository struct {
	db *gorm.DB
}

func (r *licenseRepository) Create(ctx context.Context, license domain.LicenseKey) (domain.LicenseKey, error) {
	rec := toLicenseModel(license)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.LicenseKey{}, domain.ErrConflict
		}
		return domain.LicenseKey{}, err
	}
	return toDomainLicense(rec), nil
}

func (r *licenseRepository) GetByKey(ctx context.Context, key string) (domain.LicenseKey, error) {
	var rec licenseModel
	if err := r.db.WithContext(ctx).Where("key = ?", key).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LicenseKey{}, domain.ErrNotFound
		}
		return domain.LicenseKey{}, err
	}
	return toDomainLicense(rec), nil
}

func (r *licenseRepository) GetByID(ctx context.Context, licenseID uuid.UUID) (domain.LicenseKey, error) {
	var rec licenseModel
	if err := r.db.WithContext(ctx).Where("license_id = ?", licenseID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LicenseKey{}, domain.ErrNotFound
		}
		return domain.LicenseKey{}, err
	}
	return toDomainLicense(rec), nil
}

func (r *licenseRepository) KeyExists(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&licenseModel{}).Where("key = ?", key).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *licenseRepository) Update(ctx context.Context, license domain.LicenseKey) error {
	rec := toLicenseModel(license)
	res := r.db.WithContext(ctx).
		Model(&licenseModel{}).
		Where("license_id = ?", license.LicenseID).
		Updates(map[string]any{
			"status":               rec.Status,
			"max_activations":      rec.MaxActivations,
			"valid_from":           rec.ValidFrom,
			"expires_at":           rec.ExpiresAt,
			"grace_period_days":    rec.GracePeriodDays,
			"ip_whitelist":         rec.IPWhitelist,
			"requires_hardware_id": rec.RequiresHardwareID,
			"features":             rec.Features,
			"metadata":             rec.Metadata,
			"updated_at":           rec.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementActivationsIfBelow claims one quota slot with a single
// conditional UPDATE. The WHERE clause carries the quota check, so two
// concurrent claims for the last slot cannot both succeed.
func (r *licenseRepository) IncrementActivationsIfBelow(ctx context.Context, licenseID uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&licenseModel{}).
		Where("license_id = ? AND current_activations < max_activations", licenseID).
		Updates(map[string]any{
			"current_activations": gorm.Expr("current_activations + 1"),
			"updated_at":          now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *licenseRepository) DecrementActivations(ctx context.Context, licenseID uuid.UUID, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&licenseModel{}).
		Where("license_id = ? AND current_activations > 0", licenseID).
		Updates(map[string]any{
			"current_activations": gorm.Expr("current_activations - 1"),
			"updated_at":          now,
		})
	return res.Error
}
