package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/dcaplatform/authcore/internal/ports"
)

type loginAttemptRepository struct {
	db *gorm.DB
}

func (r *loginAttemptRepository) Insert(ctx context.Context, attempt ports.LoginAttempt) error {
	rec := loginAttemptModel{
		UserID:        attempt.UserID,
		Identifier:    attempt.Identifier,
		AttemptAt:     attempt.AttemptAt,
		IPAddress:     nullableString(attempt.IPAddress),
		UserAgent:     attempt.UserAgent,
		Success:       attempt.Success,
		FailureReason: attempt.FailureReason,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}
