package repository

import (
	"time"

	"github.com/foodgram/foodgram-backend/internal/app/model"
	"github.com/foodgram/foodgram-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RevokedTokenRepository interface {
	Create(tokenHash string, expiresAt time.Time) error
	Exists(tokenHash string, now time.Time) (bool, error)
	DeleteExpired(now time.Time) (int64, error)
}

type revokedTokenRepository struct {
	db *gorm.DB
}

func NewRevokedTokenRepository(db *gorm.DB) RevokedTokenRepository {
	return &revokedTokenRepository{db: db}
}

// Create records a revoked token. Revoking the same token twice is a no-op.
func (r *revokedTokenRepository) Create(tokenHash string, expiresAt time.Time) error {
	token := &model.RevokedToken{TokenHash: tokenHash, ExpiresAt: expiresAt}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_hash"}},
		DoNothing: true,
	}).Create(token).Error
	if err != nil {
		logger.Error("Failed to store revoked token in database", err)
		return err
	}
	return nil
}

func (r *revokedTokenRepository) Exists(tokenHash string, now time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&model.RevokedToken{}).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check revoked token in database", err)
		return false, err
	}
	return count > 0, nil
}

// DeleteExpired purges tokens that can no longer be presented anyway
func (r *revokedTokenRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at <= ?", now).Delete(&model.RevokedToken{})
	if result.Error != nil {
		logger.Error("Failed to purge expired revoked tokens", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
