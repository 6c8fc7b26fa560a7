package repository

import (
	"gorm.io/gorm"

	"github.com/camden-git/nimlothbackend/models"
)

type GormPasswordResetRepository struct {
	db *gorm.DB
}

func NewGormPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &GormPasswordResetRepository{db: db}
}

func (r *GormPasswordResetRepository) Create(token *models.PasswordResetToken) error {
	return r.db.Create(token).Error
}

func (r *GormPasswordResetRepository) GetByToken(token string) (*models.PasswordResetToken, error) {
	var reset models.PasswordResetToken
	if err := r.db.Preload("User").Where("token = ?", token).First(&reset).Error; err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *GormPasswordResetRepository) MarkUsed(id uint) error {
	return r.db.Model(&models.PasswordResetToken{}).Where("id = ?", id).Update("used", true).Error
}
