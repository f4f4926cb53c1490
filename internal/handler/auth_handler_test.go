package handler

import (
	"net/http"
	"testing"

	"github.com/decodeit/internal/service"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupHandlerTest(t)
	ada := env.register(t, "ada@example.com", "Ada")
	if ada.token == "" {
		t.Fatal("expected token after register")
	}

	anon := env.client()
	w := anon.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "ADA@example.com", "password": "pass1234", "birthday": "1990-08-01",
	})
	expectError(t, w, http.StatusConflict, service.ErrEmailTaken.Message)

	w = anon.do(t, http.MethodPost, "/api/auth/login", map[string]string{"identifier": "ada", "password": "pass1234"})
	expectStatus(t, w, http.StatusOK)
	var resp authResponse
	decodeJSON(t, w, &resp)
	if !resp.Success || resp.Token == "" || resp.User.Email != "ada@example.com" || resp.User.Username != "Ada" {
		t.Fatalf("unexpected login response %+v", resp)
	}

	// 旧客户端只传 email 字段
	w = anon.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "pass1234"})
	expectStatus(t, w, http.StatusOK)

	cases := []struct {
		name   string
		body   interface{}
		status int
		msg    string
	}{
		{"wrong password", map[string]string{"identifier": "ada@example.com", "password": "nope"}, http.StatusUnauthorized, service.ErrIncorrectPassword.Message},
		{"unknown account", map[string]string{"identifier": "ghost", "password": "pass1234"}, http.StatusUnauthorized, service.ErrAccountNotFound.Message},
		{"missing password", map[string]string{"identifier": "ada"}, http.StatusBadRequest, "Please enter your password."},
		{"malformed body", "{", http.StatusBadRequest, "Invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectError(t, anon.do(t, http.MethodPost, "/api/auth/login", tc.body), tc.status, tc.msg)
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	env := setupHandlerTest(t)
	anon := env.client()

	w := anon.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "not-an-email", "password": "pass1234", "birthday": "1990-08-01",
	})
	expectError(t, w, http.StatusBadRequest, service.ErrInvalidEmail.Message)

	w = anon.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "bob@example.com", "password": "pw", "birthday": "1990-08-01",
	})
	expectError(t, w, http.StatusBadRequest, service.ErrPasswordTooShort.Message)
}

func TestAuthRequired(t *testing.T) {
	env := setupHandlerTest(t)
	ada := env.register(t, "ada@example.com", "Ada")

	anon := env.client()
	w := anon.do(t, http.MethodGet, "/api/user/profile", nil)
	expectError(t, w, http.StatusUnauthorized, service.ErrTokenMissing.Message)

	anon.token = "garbage"
	w = anon.do(t, http.MethodGet, "/api/user/profile", nil)
	expectError(t, w, http.StatusUnauthorized, service.ErrTokenInvalid.Message)

	w = ada.do(t, http.MethodDelete, "/api/user/account", nil)
	expectStatus(t, w, http.StatusOK)

	w = ada.do(t, http.MethodGet, "/api/user/profile", nil)
	expectError(t, w, http.StatusUnauthorized, "User not found")
}

func TestProfileAndPassword(t *testing.T) {
	env := setupHandlerTest(t)
	ada := env.register(t, "ada@example.com", "Ada")
	env.register(t, "bob@example.com", "bob")

	w := ada.do(t, http.MethodGet, "/api/user/profile", nil)
	expectStatus(t, w, http.StatusOK)
	var profile profileResponse
	decodeJSON(t, w, &profile)
	if profile.User.Birthday != "1990-08-01" || profile.User.Theme != "dark" {
		t.Fatalf("unexpected profile %+v", profile.User)
	}

	w = ada.do(t, http.MethodPut, "/api/user/profile", map[string]string{"username": "Countess", "theme": "light"})
	expectStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &profile)
	if profile.User.Username != "Countess" || profile.User.Theme != "light" {
		t.Fatalf("profile not updated: %+v", profile.User)
	}

	w = ada.do(t, http.MethodPut, "/api/user/profile", map[string]string{"username": "BOB"})
	expectError(t, w, http.StatusConflict, service.ErrUsernameTaken.Message)

	w = ada.do(t, http.MethodPut, "/api/user/password", map[string]string{"currentPassword": "wrong", "newPassword": "next1234"})
	expectError(t, w, http.StatusUnauthorized, service.ErrCurrentPassword.Message)

	w = ada.do(t, http.MethodPut, "/api/user/password", map[string]string{"currentPassword": "pass1234", "newPassword": "next1234"})
	expectStatus(t, w, http.StatusOK)
	var msg MessageResponse
	decodeJSON(t, w, &msg)
	if msg.Message != "Password updated successfully" {
		t.Fatalf("unexpected message %q", msg.Message)
	}

	w = env.client().do(t, http.MethodPost, "/api/auth/login", map[string]string{"identifier": "countess", "password": "next1234"})
	expectStatus(t, w, http.StatusOK)
}
