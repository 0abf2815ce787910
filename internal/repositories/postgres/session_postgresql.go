package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/learning-portal-service/internal/models"
	"github.com/SAP-F-2025/learning-portal-service/internal/repositories"
)

type sessionRepository struct {
	baseRepository
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &sessionRepository{baseRepository{db: db}}
}

func (r *sessionRepository) Create(ctx context.Context, tx *gorm.DB, session *models.SessionRecord) error {
	return handleDBError(r.getDB(tx).WithContext(ctx).Create(session).Error, "create session")
}

func (r *sessionRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.SessionRecord, error) {
	var session models.SessionRecord
	if err := r.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, handleDBError(err, "get session")
	}
	return &session, nil
}

// Revoke is idempotent: revoking an already revoked session keeps the first timestamp.
func (r *sessionRepository) Revoke(ctx context.Context, tx *gorm.DB, id string, at time.Time) error {
	result := r.getDB(tx).WithContext(ctx).Model(&models.SessionRecord{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at)
	if result.Error != nil {
		return handleDBError(result.Error, "revoke session")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.getDB(tx).WithContext(ctx).Model(&models.SessionRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return handleDBError(err, "revoke session")
		}
		if count == 0 {
			return handleDBError(gorm.ErrRecordNotFound, "revoke session")
		}
	}
	return nil
}

// RevokeAllForUser revokes every live session of a user and returns their ids.
func (r *sessionRepository) RevokeAllForUser(ctx context.Context, tx *gorm.DB, userID string, at time.Time) ([]string, error) {
	db := r.getDB(tx).WithContext(ctx)

	var ids []string
	if err := db.Model(&models.SessionRecord{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Pluck("id", &ids).Error; err != nil {
		return nil, handleDBError(err, "list user sessions")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if err := db.Model(&models.SessionRecord{}).
		Where("id IN ?", ids).
		Update("revoked_at", at).Error; err != nil {
		return nil, handleDBError(err, "revoke user sessions")
	}
	return ids, nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error) {
	result := r.getDB(tx).WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.SessionRecord{})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "delete expired sessions")
	}
	return result.RowsAffected, nil
}
