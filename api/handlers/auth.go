package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/emergencyai/dispatch-api/api"
	"github.com/emergencyai/dispatch-api/config"
	"github.com/emergencyai/dispatch-api/models"
)

// Auth serves login, logout and verify
type Auth struct {
	Users    []models.User
	validate *validator.Validate
}

// NewAuth builds the auth handler with the static user allow-list
func NewAuth(_ config.Config) Auth {
	return Auth{
		Users:    defaultUsers(),
		validate: validator.New(),
	}
}

// defaultUsers is the fixed allow-list; there is no user management surface
func defaultUsers() []models.User {
	users := []struct {
		email, password, role, name string
	}{
		{"admin@emergency.ai", "123456", "admin", "Admin User"},
		{"anand", "123456", "admin", "Anand"},
		{"dispatcher@emergency.ai", "123456", "dispatcher", "Dispatcher"},
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			zap.S().With(err).Error("failed to hash allow-list password")
			continue
		}
		out = append(out, models.User{Email: u.email, Name: u.name, Role: u.role, PasswordHash: hash})
	}
	return out
}

// LoginHandler authenticates a user against the allow-list and issues a
// signed per-session token
func (a Auth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := a.validate.Struct(requestBody); err != nil {
		config.ErrorStatus("Email and password are required", http.StatusBadRequest, w, err)
		return
	}

	zap.S().Debugw("login attempt", "email", requestBody.Email)

	user, ok := a.lookup(requestBody.Email, requestBody.Password)
	if !ok {
		zap.S().Warnw("failed login attempt", "email", requestBody.Email)
		config.ErrorStatus("Invalid credentials", http.StatusUnauthorized, w, nil)
		return
	}

	token, err := api.IssueSessionToken(r, user)
	if err != nil {
		config.ErrorStatus("failed to issue session token", http.StatusInternalServerError, w, err)
		return
	}

	config.WriteJSON(w, http.StatusOK, models.Response{
		Success: true,
		Message: "Login successful",
		Data:    models.LoginData{Token: token, User: user.Profile()},
	})
}

// lookup does not distinguish unknown users from wrong passwords; the
// bcrypt compare runs either way so both paths cost the same
func (a Auth) lookup(email, password string) (models.User, bool) {
	var found models.User
	match := 0
	for _, u := range a.Users {
		if subtle.ConstantTimeCompare([]byte(u.Email), []byte(email)) == 1 {
			found = u
			match = 1
		}
	}
	hash := found.PasswordHash
	if match == 0 {
		// burn a compare against a throwaway hash
		hash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B4Vn1a5S1RrF5eF0mGpQn9uYFQhS")
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return models.User{}, false
	}
	return found, match == 1
}

// LogoutHandler revokes the presented session token
func (a Auth) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	tokenID, err := api.RevokeSessionToken(r)
	if err != nil {
		config.ErrorStatus("failed to revoke session token", http.StatusUnauthorized, w, err)
		return
	}
	zap.S().Infow("user logged out", "tokenId", tokenID)
	config.WriteJSON(w, http.StatusOK, models.Response{
		Success: true,
		Message: "Logout successful",
	})
}

// VerifyHandler acks a request that passed the bearer gate
func (a Auth) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	config.WriteJSON(w, http.StatusOK, models.Response{
		Success: true,
		Message: "Token is valid",
	})
}
