package models

// User holds an entry of the authentication allow-list. Users are static
// infrastructure, there is no create/update/delete surface for them.
type User struct {
	Email        string
	Name         string
	Role         string
	PasswordHash []byte
}

// UserProfile is the public shape of a user returned by login
type UserProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Profile strips the credential material off a user
func (u User) Profile() UserProfile {
	return UserProfile{Email: u.Email, Name: u.Name, Role: u.Role}
}
