package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/camden-git/nimlothbackend/models"
)

func TestRegisterLoginAndCurrentPerson(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"username":   "aragorn",
		"password":   "strider",
		"email":      "aragorn@gondor.example",
		"first_name": "Aragorn",
		"last_name":  "Elessar",
	}
	rec := env.do(t, http.MethodPost, "/api/auth/register", payload, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d: %s", rec.Code, rec.Body.String())
	}

	// registration must synchronously create a linked person
	if n := env.countPersons(t); n != 1 {
		t.Fatalf("expected 1 person after registration, got %d", n)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "aragorn", "password": "strider"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d: %s", rec.Code, rec.Body.String())
	}
	var login LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if login.Token == "" || login.RefreshToken == "" {
		t.Fatal("expected both access and refresh tokens")
	}
	if login.User.Username != "aragorn" {
		t.Fatalf("unexpected user in login response: %+v", login.User)
	}

	rec = env.do(t, http.MethodGet, "/api/persons/me", nil, login.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /persons/me, got %d", rec.Code)
	}
	person := decodePerson(t, rec)
	if person.FirstName != "Aragorn" || person.LastName != "Elessar" {
		t.Fatalf("expected registration names on the linked person, got %+v", person)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "gimli", "axe")

	rec := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{"username": "gimli", "password": "axe2"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", rec.Code)
	}
	if n := env.countPersons(t); n != 0 {
		t.Fatalf("expected no person created on failed registration, got %d", n)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "boromir", "horn")

	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "boromir", "password": "wrong"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong password, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "nobody", "password": "x"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an unknown user, got %d", rec.Code)
	}
	if body := rec.Body.String(); body == "" {
		t.Fatal("expected a structured error body")
	}
}

func TestRefreshIssuesUsableAccessToken(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "legolas", "bow")

	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "legolas", "password": "bow"}, "")
	var login LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login/refresh", map[string]string{"refresh_token": login.RefreshToken}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from refresh, got %d: %s", rec.Code, rec.Body.String())
	}
	var refreshed struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&refreshed); err != nil {
		t.Fatalf("failed to decode refresh response: %v", err)
	}
	if refreshed.Token == "" {
		t.Fatal("expected a new access token")
	}

	rec = env.do(t, http.MethodGet, "/api/auth/user", nil, refreshed.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("refreshed token must be usable, got %d", rec.Code)
	}
	var user models.User
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if user.Username != "legolas" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "gollum", "precious")
	access := env.tokenFor(t, user)

	rec := env.do(t, http.MethodPost, "/api/auth/login/refresh", map[string]string{"refresh_token": access}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("an access token must not refresh, got %d", rec.Code)
	}
}

func TestAccessEndpointsRejectRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "saruman", "palantir")
	refresh, _, err := env.auth.issueToken(user.ID, TokenTypeRefresh, env.auth.Cfg.RefreshTokenTTL)
	if err != nil {
		t.Fatalf("failed to issue refresh token: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/auth/user", nil, refresh)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("a refresh token must not authenticate requests, got %d", rec.Code)
	}
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "eowyn", "shield")
	token := env.tokenFor(t, user)

	rec := env.do(t, http.MethodPost, "/api/auth/change-password", map[string]string{"old_password": "wrong", "new_password": "maiden"}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a wrong old password, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/change-password", map[string]string{"old_password": "shield", "new_password": "maiden"}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "eowyn", "password": "maiden"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login with the new password must succeed, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "eowyn", "password": "shield"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("login with the old password must fail, got %d", rec.Code)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "faramir", "ranger")

	rec := env.do(t, http.MethodPost, "/api/auth/password-reset", map[string]string{"email": user.Email}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from reset request, got %d", rec.Code)
	}
	// the response is identical for unknown emails
	rec = env.do(t, http.MethodPost, "/api/auth/password-reset", map[string]string{"email": "unknown@example.com"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for an unknown email, got %d", rec.Code)
	}

	var reset models.PasswordResetToken
	if err := env.db.Where("user_id = ?", user.ID).First(&reset).Error; err != nil {
		t.Fatalf("expected a stored reset token: %v", err)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/password-reset-confirm", map[string]string{"token": reset.Token, "new_password": "captain"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from confirm, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "faramir", "password": "captain"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login with the reset password must succeed, got %d", rec.Code)
	}

	// the token is single use
	rec = env.do(t, http.MethodPost, "/api/auth/password-reset-confirm", map[string]string{"token": reset.Token, "new_password": "again"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a consumed token, got %d", rec.Code)
	}
}

func TestPasswordResetConfirmRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/password-reset-confirm", map[string]string{"token": "not-a-token", "new_password": "x"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown token, got %d", rec.Code)
	}
}

func TestLogoutAcknowledges(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", rec.Code)
	}
}
