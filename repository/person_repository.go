package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/nimlothbackend/database"
	"github.com/camden-git/nimlothbackend/models"
)

// PersonRepository handles database operations for Person records and their
// linked user accounts.
type PersonRepository struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// NewPersonRepository creates a new instance of PersonRepository
func NewPersonRepository(db *gorm.DB) *PersonRepository {
	sqlDB, err := db.DB()
	if err != nil {
		// the GORM sqlite driver always exposes an underlying sql.DB
		panic(fmt.Sprintf("failed to get underlying sql.DB: %v", err))
	}
	return &PersonRepository{DB: db, sqlDB: sqlDB}
}

// Create creates a new person record in the database
func (r *PersonRepository) Create(person *models.Person) error {
	now := time.Now()
	person.CreatedOn = now
	person.ModifiedOn = now

	err := r.DB.Create(person).Error
	if err != nil {
		return fmt.Errorf("failed to create person %s: %w", person.FullName(), err)
	}
	return nil
}

// CreateWithAccount creates a person together with an optional new user
// account in a single transaction. Nothing is written if either insert fails.
func (r *PersonRepository) CreateWithAccount(person *models.Person, account *models.User) error {
	if account == nil {
		return r.Create(person)
	}

	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return fmt.Errorf("failed to create user account %s: %w", account.Username, err)
		}
		person.UserAccountID = &account.ID

		now := time.Now()
		person.CreatedOn = now
		person.ModifiedOn = now
		if err := tx.Create(person).Error; err != nil {
			return fmt.Errorf("failed to create person %s: %w", person.FullName(), err)
		}
		return nil
	})
}

// GetByID retrieves a person by their ID, preloading the linked user account
func (r *PersonRepository) GetByID(id uint) (*models.Person, error) {
	var person models.Person
	err := r.DB.Preload("UserAccount").First(&person, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by ID %d: %w", id, err)
	}
	return &person, nil
}

// GetByUserID retrieves the person linked to the given user account
func (r *PersonRepository) GetByUserID(userID uint) (*models.Person, error) {
	var person models.Person
	err := r.DB.Preload("UserAccount").Where("user_account_id = ?", userID).First(&person).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person for user ID %d: %w", userID, err)
	}
	return &person, nil
}

// ListAll retrieves all persons in a stable order
func (r *PersonRepository) ListAll() ([]models.Person, error) {
	var persons []models.Person
	err := r.DB.Preload("UserAccount").Order("last_name ASC, first_name ASC, id ASC").Find(&persons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	return persons, nil
}

// ListByIDs retrieves the persons with the given IDs, in ID order
func (r *PersonRepository) ListByIDs(ids []uint) ([]models.Person, error) {
	if len(ids) == 0 {
		return []models.Person{}, nil
	}
	var persons []models.Person
	err := r.DB.Preload("UserAccount").Where("id IN ?", ids).Order("id ASC").Find(&persons).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list persons by IDs: %w", err)
	}
	return persons, nil
}

// Update saves an existing person's fields and refreshes the modification
// timestamp. The caller is expected to have loaded the record via GetByID.
func (r *PersonRepository) Update(person *models.Person) error {
	person.ModifiedOn = time.Now()
	result := r.DB.Omit(clause.Associations).Save(person)
	if result.Error != nil {
		return fmt.Errorf("failed to update person ID %d: %w", person.ID, result.Error)
	}
	return nil
}

// UpdateWithAccount saves a person together with a created or modified user
// account in a single transaction.
func (r *PersonRepository) UpdateWithAccount(person *models.Person, account *models.User) error {
	if account == nil {
		return r.Update(person)
	}

	return r.DB.Transaction(func(tx *gorm.DB) error {
		if account.ID == 0 {
			if err := tx.Create(account).Error; err != nil {
				return fmt.Errorf("failed to create user account %s: %w", account.Username, err)
			}
		} else {
			if err := tx.Save(account).Error; err != nil {
				return fmt.Errorf("failed to update user account ID %d: %w", account.ID, err)
			}
		}
		person.UserAccountID = &account.ID

		person.ModifiedOn = time.Now()
		if err := tx.Omit(clause.Associations).Save(person).Error; err != nil {
			return fmt.Errorf("failed to update person ID %d: %w", person.ID, err)
		}
		return nil
	})
}

// Delete removes a person by their ID. Any person referencing the deleted
// record as mother, father, creator or modifier has that reference cleared
// rather than being deleted itself.
func (r *PersonRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for _, column := range []string{"mother_id", "father_id", "created_by_id", "modified_by_id"} {
			if err := tx.Model(&models.Person{}).Where(column+" = ?", id).Update(column, nil).Error; err != nil {
				return fmt.Errorf("failed to clear %s references to person ID %d: %w", column, id, err)
			}
		}

		result := tx.Delete(&models.Person{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete person ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// FindIDsByName searches persons by any of their name fields
func (r *PersonRepository) FindIDsByName(query string) ([]uint, error) {
	return database.FindPersonIDsByName(r.sqlDB, query)
}

// ListChildren retrieves the persons that list the given person as mother or father
func (r *PersonRepository) ListChildren(parentID uint) ([]models.Person, error) {
	ids, err := database.ListChildIDs(r.sqlDB, parentID)
	if err != nil {
		return nil, err
	}
	return r.ListByIDs(ids)
}
