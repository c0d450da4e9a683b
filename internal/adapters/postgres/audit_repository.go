package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcaplatform/authcore/internal/domain"
)

type auditRepository struct {
	db *gorm.DB
}

func (r *auditRepository) AppendKeyValidation(ctx context.Context, record domain.KeyValidation) error {
	rec := toKeyValidationModel(record)
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *auditRepository) ListKeyValidationsSince(ctx context.Context, licenseID uuid.UUID, since time.Time) ([]domain.KeyValidation, error) {
	var rows []keyValidationModel
	err := r.db.WithContext(ctx).
		Where("license_id = ? AND created_at > ?", licenseID, since).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.KeyValidation, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainKeyValidation(row))
	}
	return out, nil
}
