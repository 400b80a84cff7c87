package dto

import "github.com/noah-isme/school-records-api/internal/models"

// LoginRequest is the credential payload for POST /login.
type LoginRequest struct {
	Username  string `json:"username" validate:"required,max=64"`
	Password  string `json:"password" validate:"required,max=128"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResult carries the authenticated user and the raw session token the
// transport layer places in the cookie.
type LoginResult struct {
	User      models.UserInfo
	Token     string
	ExpiresIn int
}

// UserResponse is returned by login and who-am-I.
type UserResponse struct {
	Success bool            `json:"success"`
	User    models.UserInfo `json:"user"`
}
