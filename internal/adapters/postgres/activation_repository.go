package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcaplatform/authcore/internal/domain"
)

type activationRepository struct {
	db *gorm.DB
}

func (r *activationRepository) Create(ctx context.Context, activation domain.Activation) (domain.Activation, error) {
	rec := toActivationModel(activation)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Activation{}, domain.ErrConflict
		}
		return domain.Activation{}, err
	}
	return toDomainActivation(rec), nil
}

func (r *activationRepository) Find(ctx context.Context, licenseID uuid.UUID, hardwareID string) (domain.Activation, error) {
	var rec activationModel
	err := r.db.WithContext(ctx).
		Where("license_id = ? AND hardware_id = ?", licenseID, hardwareID).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Activation{}, domain.ErrNotFound
		}
		return domain.Activation{}, err
	}
	return toDomainActivation(rec), nil
}

func (r *activationRepository) Update(ctx context.Context, activation domain.Activation) error {
	rec := toActivationModel(activation)
	res := r.db.WithContext(ctx).
		Model(&activationModel{}).
		Where("activation_id = ?", activation.ActivationID).
		Updates(map[string]any{
			"device_name":    rec.DeviceName,
			"ip_address":     rec.IPAddress,
			"status":         rec.Status,
			"activated_at":   rec.ActivatedAt,
			"last_seen_at":   rec.LastSeenAt,
			"deactivated_at": rec.DeactivatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *activationRepository) ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]domain.Activation, error) {
	var rows []activationModel
	err := r.db.WithContext(ctx).
		Where("license_id = ?", licenseID).
		Order("activated_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Activation, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainActivation(row))
	}
	return out, nil
}
