package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dcaplatform/authcore/internal/domain"
)

type sessionRepository struct {
	db *gorm.DB
}

func (r *sessionRepository) Create(ctx context.Context, session domain.Session) (domain.Session, error) {
	rec := toSessionModel(session)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Session{}, err
	}
	return toDomainSession(rec), nil
}

func (r *sessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (domain.Session, error) {
	var rec sessionModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, err
	}
	return toDomainSession(rec), nil
}

func (r *sessionRepository) Update(ctx context.Context, session domain.Session) error {
	rec := toSessionModel(session)
	res := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ?", session.SessionID).
		Updates(map[string]any{
			"status":             rec.Status,
			"refresh_token_hash": rec.RefreshTokenHash,
			"access_token_hash":  rec.AccessTokenHash,
			"security_flags":     rec.SecurityFlags,
			"last_activity_at":   rec.LastActivityAt,
			"idle_timeout_at":    rec.IdleTimeoutAt,
			"revoked_at":         rec.RevokedAt,
			"revoke_reason":      rec.RevokeReason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *sessionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	var rows []sessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, string(domain.SessionStatusActive)).
		Order("last_activity_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainSession(row))
	}
	return out, nil
}

func (r *sessionRepository) ListRecentByUser(ctx context.Context, userID uuid.UUID, since time.Time) ([]domain.Session, error) {
	var rows []sessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND last_activity_at > ?", userID, since).
		Order("last_activity_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainSession(row))
	}
	return out, nil
}

func (r *sessionRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID, reason string, revokedAt time.Time, exceptSessionID uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("user_id = ? AND status = ?", userID, string(domain.SessionStatusActive))
	if exceptSessionID != uuid.Nil {
		query = query.Where("session_id <> ?", exceptSessionID)
	}
	res := query.Updates(map[string]any{
		"status":        string(domain.SessionStatusRevoked),
		"revoked_at":    revokedAt,
		"revoke_reason": reason,
	})
	return res.RowsAffected, res.Error
}

func (r *sessionRepository) MarkExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("status = ? AND (expires_at < ? OR idle_timeout_at < ?)", string(domain.SessionStatusActive), now, now).
		Update("status", string(domain.SessionStatusExpired))
	return res.RowsAffected, res.Error
}
