package models

// LoginRequest is the payload for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginData is the data portion of a successful login response
type LoginData struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}
