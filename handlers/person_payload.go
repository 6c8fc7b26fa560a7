package handlers

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/nimlothbackend/models"
	"github.com/camden-git/nimlothbackend/repository"
	"github.com/camden-git/nimlothbackend/utils"
)

const dateLayout = "2006-01-02"

const (
	maxNameLength  = 50
	maxPlaceLength = 100
)

// AccountPayload is the nested user_account sub-object accepted on person
// create and update. The password is write-only.
type AccountPayload struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
}

// PersonPayload is the inbound wire representation of a person. All fields
// are pointers so partial updates can distinguish absent from zero.
type PersonPayload struct {
	FirstName    *string         `json:"first_name"`
	MiddleName   *string         `json:"middle_name"`
	LastName     *string         `json:"last_name"`
	BirthName    *string         `json:"birth_name"`
	ArtistName   *string         `json:"artist_name"`
	DateOfBirth  *string         `json:"date_of_birth"`
	PlaceOfBirth *string         `json:"place_of_birth"`
	DateOfDeath  *string         `json:"date_of_death"`
	PlaceOfDeath *string         `json:"place_of_death"`
	CauseOfDeath *string         `json:"cause_of_death"`
	Mother       *uint           `json:"mother"`
	Father       *uint           `json:"father"`
	Gender       *string         `json:"gender"`
	UserAccount  *AccountPayload `json:"user_account"`
}

// Validate checks field lengths, date formats, the gender code, parent
// existence and nested account constraints. It performs no writes; a non-empty
// result means the request must be rejected with a 400.
func (p *PersonPayload) Validate(personRepo repository.PersonRepositoryInterface, userRepo repository.UserRepository, existing *models.Person) ValidationErrors {
	errs := ValidationErrors{}

	checkLength := func(field string, value *string, max int) {
		if value != nil && len(*value) > max {
			errs.Add(field, fmt.Sprintf("ensure this field has no more than %d characters", max))
		}
	}
	checkLength("first_name", p.FirstName, maxNameLength)
	checkLength("middle_name", p.MiddleName, maxNameLength)
	checkLength("last_name", p.LastName, maxNameLength)
	checkLength("birth_name", p.BirthName, maxNameLength)
	checkLength("artist_name", p.ArtistName, maxNameLength)
	checkLength("place_of_birth", p.PlaceOfBirth, maxPlaceLength)
	checkLength("place_of_death", p.PlaceOfDeath, maxPlaceLength)
	checkLength("cause_of_death", p.CauseOfDeath, maxPlaceLength)

	checkDate := func(field string, value *string) {
		if value == nil {
			return
		}
		if _, err := time.Parse(dateLayout, *value); err != nil {
			errs.Add(field, "date has wrong format, use YYYY-MM-DD")
		}
	}
	checkDate("date_of_birth", p.DateOfBirth)
	checkDate("date_of_death", p.DateOfDeath)

	if p.Gender != nil && !models.Gender(*p.Gender).IsValid() {
		errs.Add("gender", fmt.Sprintf("%q is not a valid choice", *p.Gender))
	}

	checkParent := func(field string, id *uint) {
		if id == nil {
			return
		}
		if _, err := personRepo.GetByID(*id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errs.Add(field, fmt.Sprintf("person with id %d does not exist", *id))
			} else {
				errs.Add(field, "could not verify referenced person")
			}
		}
	}
	checkParent("mother", p.Mother)
	checkParent("father", p.Father)

	if p.UserAccount != nil {
		var current *models.User
		if existing != nil {
			current = existing.UserAccount
		}
		if current == nil {
			// a new account will be created; it needs a username
			if p.UserAccount.Username == nil || *p.UserAccount.Username == "" {
				errs.Add("user_account.username", "this field is required")
			}
		}
		if p.UserAccount.Username != nil && *p.UserAccount.Username != "" {
			if current == nil || current.Username != *p.UserAccount.Username {
				if _, err := userRepo.GetByUsername(*p.UserAccount.Username); err == nil {
					errs.Add("user_account.username", "a user with that username already exists")
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					errs.Add("user_account.username", "could not verify username availability")
				}
			}
		}
	}

	return errs
}

// Apply copies the payload onto a person record. With partial=false every
// field is replaced, absent ones resetting to their defaults; with
// partial=true only the provided fields change. Must be called after Validate.
func (p *PersonPayload) Apply(person *models.Person, partial bool) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		} else if !partial {
			*dst = ""
		}
	}
	setString(&person.FirstName, p.FirstName)
	setString(&person.MiddleName, p.MiddleName)
	setString(&person.LastName, p.LastName)
	setString(&person.BirthName, p.BirthName)
	setString(&person.ArtistName, p.ArtistName)
	setString(&person.PlaceOfBirth, p.PlaceOfBirth)
	setString(&person.PlaceOfDeath, p.PlaceOfDeath)
	setString(&person.CauseOfDeath, p.CauseOfDeath)

	setDate := func(dst **time.Time, src *string) {
		if src != nil {
			parsed, err := time.Parse(dateLayout, *src)
			if err == nil {
				*dst = &parsed
			}
		} else if !partial {
			*dst = nil
		}
	}
	setDate(&person.DateOfBirth, p.DateOfBirth)
	setDate(&person.DateOfDeath, p.DateOfDeath)

	setRef := func(dst **uint, src *uint) {
		if src != nil {
			*dst = src
		} else if !partial {
			*dst = nil
		}
	}
	setRef(&person.MotherID, p.Mother)
	setRef(&person.FatherID, p.Father)

	if p.Gender != nil {
		person.Gender = models.Gender(*p.Gender)
	} else if !partial {
		person.Gender = models.GenderUnspecified
	}
}

// BuildAccount merges the account payload into an existing linked account, or
// builds a new one when there is none. A supplied password is bcrypt-hashed;
// an account created without one has no usable password.
func (p *AccountPayload) BuildAccount(existing *models.User) (*models.User, error) {
	account := existing
	if account == nil {
		account = &models.User{}
	}
	if p.Username != nil {
		account.Username = *p.Username
	}
	if p.Email != nil {
		account.Email = *p.Email
	}
	if p.FirstName != nil {
		account.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		account.LastName = *p.LastName
	}
	if p.Password != nil && *p.Password != "" {
		if err := account.SetPassword(*p.Password); err != nil {
			return nil, err
		}
	}
	return account, nil
}

// AccountResponse is the serialized user account nested in a person response.
// It never carries password material.
type AccountResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// PersonResponse is the outbound wire representation of a person, including
// the derived name and elapsed-time views.
type PersonResponse struct {
	ID           uint    `json:"id"`
	FirstName    string  `json:"first_name"`
	MiddleName   string  `json:"middle_name"`
	LastName     string  `json:"last_name"`
	BirthName    string  `json:"birth_name"`
	ArtistName   string  `json:"artist_name"`
	DateOfBirth  *string `json:"date_of_birth"`
	PlaceOfBirth string  `json:"place_of_birth"`
	DateOfDeath  *string `json:"date_of_death"`
	PlaceOfDeath string  `json:"place_of_death"`
	CauseOfDeath string  `json:"cause_of_death"`
	Mother       *uint   `json:"mother"`
	Father       *uint   `json:"father"`
	Gender       string  `json:"gender"`

	UserAccount *AccountResponse `json:"user_account"`

	FullName   string  `json:"full_name"`
	CreatedOn  *string `json:"created_on"`
	ModifiedOn *string `json:"modified_on"`

	TimeSinceBirth        *utils.Delta `json:"time_since_birth"`
	TimeSinceDeath        *utils.Delta `json:"time_since_death"`
	TimeSinceModification *utils.Delta `json:"time_since_modification"`
}

// NewPersonResponse serializes a stored person.
func NewPersonResponse(p *models.Person) PersonResponse {
	resp := PersonResponse{
		ID:           p.ID,
		FirstName:    p.FirstName,
		MiddleName:   p.MiddleName,
		LastName:     p.LastName,
		BirthName:    p.BirthName,
		ArtistName:   p.ArtistName,
		DateOfBirth:  formatDate(p.DateOfBirth),
		PlaceOfBirth: p.PlaceOfBirth,
		DateOfDeath:  formatDate(p.DateOfDeath),
		PlaceOfDeath: p.PlaceOfDeath,
		CauseOfDeath: p.CauseOfDeath,
		Mother:       p.MotherID,
		Father:       p.FatherID,
		Gender:       string(p.Gender),

		FullName:              p.FullName(),
		TimeSinceBirth:        p.TimeSinceBirth(),
		TimeSinceDeath:        p.TimeSinceDeath(),
		TimeSinceModification: p.TimeSinceModification(),
	}

	if !p.CreatedOn.IsZero() {
		created := p.CreatedOn
		resp.CreatedOn = formatDate(&created)
	}
	if !p.ModifiedOn.IsZero() {
		modified := p.ModifiedOn
		resp.ModifiedOn = formatDate(&modified)
	}

	if p.UserAccount != nil {
		resp.UserAccount = &AccountResponse{
			ID:        p.UserAccount.ID,
			Username:  p.UserAccount.Username,
			Email:     p.UserAccount.Email,
			FirstName: p.UserAccount.FirstName,
			LastName:  p.UserAccount.LastName,
		}
	}

	return resp
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
