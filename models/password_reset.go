package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetToken is a single-use token issued by the password-reset
// request endpoint and consumed by the confirm endpoint.
type PasswordResetToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Token     string    `json:"token" gorm:"uniqueIndex;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates a token value if not provided.
func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) (err error) {
	if t.Token == "" {
		t.Token = uuid.New().String()
	}
	return
}

// IsValid checks if the token can still be used.
func (t *PasswordResetToken) IsValid() bool {
	if t.Used {
		return false
	}
	return time.Now().Before(t.ExpiresAt)
}
