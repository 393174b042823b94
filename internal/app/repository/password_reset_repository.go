package repository

import (
	"time"

	"github.com/giftwish/giftwish-backend/internal/app/model"
	"github.com/giftwish/giftwish-backend/pkg/logger"
	"gorm.io/gorm"
)

type PasswordResetRepository interface {
	Create(reset *model.PasswordReset) error
	FindByToken(token string) (*model.PasswordReset, error)
	MarkUsed(reset *model.PasswordReset) error
	DeleteExpired(before time.Time) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(reset *model.PasswordReset) error {
	if err := r.db.Create(reset).Error; err != nil {
		logger.Error("Failed to create password reset in database", err, map[string]interface{}{
			"user_id": reset.UserID,
		})
		return err
	}
	return nil
}

func (r *passwordResetRepository) FindByToken(token string) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	if err := r.db.Where("token = ?", token).First(&reset).Error; err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepository) MarkUsed(reset *model.PasswordReset) error {
	now := time.Now()
	reset.UsedAt = &now
	return r.db.Save(reset).Error
}

// DeleteExpired removes reset rows past their deadline or already redeemed.
// Called by the nightly cleanup job.
func (r *passwordResetRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Unscoped().
		Where("expires_at < ? OR used_at IS NOT NULL", before).
		Delete(&model.PasswordReset{})
	if result.Error != nil {
		logger.Error("Failed to delete expired password resets", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
