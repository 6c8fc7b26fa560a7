package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/nimlothbackend/models"
	"github.com/camden-git/nimlothbackend/repository"
)

type PersonHandler struct {
	Repo     repository.PersonRepositoryInterface
	UserRepo repository.UserRepository
}

func NewPersonHandler(repo repository.PersonRepositoryInterface, userRepo repository.UserRepository) *PersonHandler {
	return &PersonHandler{Repo: repo, UserRepo: userRepo}
}

// callerPersonID resolves the Person linked to the authenticated account on
// this request, if any. Requests outside the auth middleware have no caller.
func (ph *PersonHandler) callerPersonID(r *http.Request) *uint {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok || user == nil {
		return nil
	}
	person, err := ph.Repo.GetByUserID(user.ID)
	if err != nil {
		return nil
	}
	return &person.ID
}

func parsePersonID(r *http.Request) (uint, error) {
	idStr := chi.URLParam(r, "person_id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (ph *PersonHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	var persons []models.Person
	var err error

	if query := r.URL.Query().Get("q"); query != "" {
		var ids []uint
		ids, err = ph.Repo.FindIDsByName(query)
		if err == nil {
			persons, err = ph.Repo.ListByIDs(ids)
		}
	} else {
		persons, err = ph.Repo.ListAll()
	}
	if err != nil {
		log.Printf("Error listing persons: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve persons")
		return
	}

	responses := make([]PersonResponse, 0, len(persons))
	for i := range persons {
		responses = append(responses, NewPersonResponse(&persons[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (ph *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var payload PersonPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if errs := payload.Validate(ph.Repo, ph.UserRepo, nil); errs.HasErrors() {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	person := &models.Person{}
	payload.Apply(person, false)

	caller := ph.callerPersonID(r)
	person.CreatedByID = caller
	person.ModifiedByID = caller

	var account *models.User
	if payload.UserAccount != nil {
		var err error
		account, err = payload.UserAccount.BuildAccount(nil)
		if err != nil {
			log.Printf("Error hashing account password: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to create person")
			return
		}
	}

	if err := ph.Repo.CreateWithAccount(person, account); err != nil {
		log.Printf("Error creating person: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create person")
		return
	}

	created, err := ph.Repo.GetByID(person.ID)
	if err != nil {
		log.Printf("Error fetching newly created person %d: %v", person.ID, err)
		writeJSON(w, http.StatusCreated, NewPersonResponse(person))
		return
	}
	writeJSON(w, http.StatusCreated, NewPersonResponse(created))
}

func (ph *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	personID, err := parsePersonID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid person ID format")
		return
	}

	person, err := ph.Repo.GetByID(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Person not found")
		} else {
			log.Printf("Error getting person %d: %v", personID, err)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve person")
		}
		return
	}

	writeJSON(w, http.StatusOK, NewPersonResponse(person))
}

// UpdatePerson handles PUT: a full replace where omitted fields reset to
// their defaults.
func (ph *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	ph.updatePerson(w, r, false)
}

// PatchPerson handles PATCH: a partial merge where omitted fields are left
// unchanged.
func (ph *PersonHandler) PatchPerson(w http.ResponseWriter, r *http.Request) {
	ph.updatePerson(w, r, true)
}

func (ph *PersonHandler) updatePerson(w http.ResponseWriter, r *http.Request, partial bool) {
	personID, err := parsePersonID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid person ID format")
		return
	}

	person, err := ph.Repo.GetByID(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Person not found")
		} else {
			log.Printf("Error getting person %d: %v", personID, err)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve person")
		}
		return
	}

	var payload PersonPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if errs := payload.Validate(ph.Repo, ph.UserRepo, person); errs.HasErrors() {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	payload.Apply(person, partial)
	if caller := ph.callerPersonID(r); caller != nil {
		person.ModifiedByID = caller
	}

	var account *models.User
	if payload.UserAccount != nil {
		account, err = payload.UserAccount.BuildAccount(person.UserAccount)
		if err != nil {
			log.Printf("Error hashing account password: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to update person")
			return
		}
	}

	if err := ph.Repo.UpdateWithAccount(person, account); err != nil {
		log.Printf("Error updating person %d: %v", personID, err)
		writeError(w, http.StatusInternalServerError, "Failed to update person")
		return
	}

	updated, err := ph.Repo.GetByID(personID)
	if err != nil {
		log.Printf("Error fetching updated person %d: %v", personID, err)
		writeJSON(w, http.StatusOK, NewPersonResponse(person))
		return
	}
	writeJSON(w, http.StatusOK, NewPersonResponse(updated))
}

func (ph *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	personID, err := parsePersonID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid person ID format")
		return
	}

	err = ph.Repo.Delete(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Person not found")
		} else {
			log.Printf("Error deleting person %d: %v", personID, err)
			writeError(w, http.StatusInternalServerError, "Failed to delete person")
		}
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// GetCurrentPerson returns the person linked to the authenticated account.
// Must be mounted behind the auth middleware.
func (ph *PersonHandler) GetCurrentPerson(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok || user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	person, err := ph.Repo.GetByUserID(user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "No person associated with this user")
		} else {
			log.Printf("Error getting person for user %d: %v", user.ID, err)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve person")
		}
		return
	}

	writeJSON(w, http.StatusOK, NewPersonResponse(person))
}

// ListChildren returns the persons that reference the target as mother or father.
func (ph *PersonHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	personID, err := parsePersonID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid person ID format")
		return
	}

	if _, err := ph.Repo.GetByID(personID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Person not found")
		} else {
			log.Printf("Error getting person %d: %v", personID, err)
			writeError(w, http.StatusInternalServerError, "Failed to retrieve person")
		}
		return
	}

	children, err := ph.Repo.ListChildren(personID)
	if err != nil {
		log.Printf("Error listing children of person %d: %v", personID, err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve children")
		return
	}

	responses := make([]PersonResponse, 0, len(children))
	for i := range children {
		responses = append(responses, NewPersonResponse(&children[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}
