package dto

import (
	"strings"
	"time"
)

// RegisterRequest creates a regular (non-superuser) account.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// Normalize trims whitespace and lower-cases the email before validation.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPart is one issued token and its expiry.
type TokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// AuthResponse is returned by register, login and refresh.  The refresh
// token is the raw value; only its hash is stored.
type AuthResponse struct {
	User    AccountResponse `json:"user"`
	Role    string          `json:"role"`
	Access  TokenPart       `json:"access"`
	Refresh TokenPart       `json:"refresh"`
}
