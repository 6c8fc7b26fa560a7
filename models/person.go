package models

import (
	"strings"
	"time"

	"github.com/camden-git/nimlothbackend/utils"
)

// Gender is the single-letter gender code stored on a person.
type Gender string

const (
	GenderMale        Gender = "M"
	GenderFemale      Gender = "F"
	GenderNonBinary   Gender = "N"
	GenderUnspecified Gender = "U"
)

// IsValid reports whether g is one of the four known gender codes.
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderNonBinary, GenderUnspecified:
		return true
	}
	return false
}

// Person represents one individual in the genealogy database.
// Mother, father, creator and modifier are self-referential links; deleting
// the referenced person nulls the link rather than cascading. The reference
// graph is not required to be acyclic.
type Person struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	FirstName  string `gorm:"size:50" json:"first_name"`
	MiddleName string `gorm:"size:50" json:"middle_name"`
	LastName   string `gorm:"size:50" json:"last_name"`
	BirthName  string `gorm:"size:50" json:"birth_name"`
	ArtistName string `gorm:"size:50" json:"artist_name"`

	DateOfBirth  *time.Time `json:"-"`
	PlaceOfBirth string     `gorm:"size:100" json:"place_of_birth"`

	DateOfDeath  *time.Time `json:"-"`
	PlaceOfDeath string     `gorm:"size:100" json:"place_of_death"`
	CauseOfDeath string     `gorm:"size:100" json:"cause_of_death"`

	MotherID *uint   `json:"mother"`
	Mother   *Person `gorm:"foreignKey:MotherID;constraint:OnDelete:SET NULL" json:"-"`
	FatherID *uint   `json:"father"`
	Father   *Person `gorm:"foreignKey:FatherID;constraint:OnDelete:SET NULL" json:"-"`

	Gender Gender `gorm:"size:1;default:U" json:"gender"`

	UserAccountID *uint `gorm:"uniqueIndex" json:"-"`
	UserAccount   *User `gorm:"foreignKey:UserAccountID;constraint:OnDelete:SET NULL" json:"-"`

	CreatedOn  time.Time `json:"-"`
	ModifiedOn time.Time `json:"-"`

	CreatedByID  *uint   `json:"-"`
	CreatedBy    *Person `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
	ModifiedByID *uint   `json:"-"`
	ModifiedBy   *Person `gorm:"foreignKey:ModifiedByID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "persons"
}

// FullName joins the non-empty name parts with spaces.
func (p *Person) FullName() string {
	parts := make([]string, 0, 3)
	for _, name := range []string{p.FirstName, p.MiddleName, p.LastName} {
		if name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, " ")
}

// TimeSinceBirth returns the elapsed time since the date of birth, or nil if
// it is not recorded.
func (p *Person) TimeSinceBirth() *utils.Delta {
	return utils.DateDeltaToNow(p.DateOfBirth)
}

// TimeSinceDeath returns the elapsed time since the date of death, or nil if
// the person has no recorded death.
func (p *Person) TimeSinceDeath() *utils.Delta {
	return utils.DateDeltaToNow(p.DateOfDeath)
}

// TimeSinceModification returns the elapsed time since the last mutation.
// ModifiedOn is tracked with a timestamp but diffed as a calendar date.
func (p *Person) TimeSinceModification() *utils.Delta {
	if p.ModifiedOn.IsZero() {
		return nil
	}
	modified := p.ModifiedOn
	return utils.DateDeltaToNow(&modified)
}
