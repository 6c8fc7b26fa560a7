package repository

import (
	"github.com/camden-git/nimlothbackend/models"
)

// PersonRepositoryInterface defines the methods for person data operations
type PersonRepositoryInterface interface {
	Create(person *models.Person) error
	CreateWithAccount(person *models.Person, account *models.User) error
	GetByID(id uint) (*models.Person, error)
	GetByUserID(userID uint) (*models.Person, error)
	ListAll() ([]models.Person, error)
	ListByIDs(ids []uint) ([]models.Person, error)
	Update(person *models.Person) error
	UpdateWithAccount(person *models.Person, account *models.User) error
	Delete(id uint) error
	FindIDsByName(query string) ([]uint, error)
	ListChildren(parentID uint) ([]models.Person, error)
}

// UserRepository defines the methods for user account data operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
}

// PasswordResetRepository defines the methods for password reset token operations
type PasswordResetRepository interface {
	Create(token *models.PasswordResetToken) error
	GetByToken(token string) (*models.PasswordResetToken, error)
	MarkUsed(id uint) error
}
