package model

import "time"

// Role is the access level of an account
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account on the boosting platform
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	ReferralCode string    `json:"referral_code,omitempty"`
	Points       int64     `json:"points"`
	Blocked      bool      `json:"blocked,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user may use the admin console
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LoginRequest represents POST /auth/login
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// RegisterRequest represents POST /auth/register
type RegisterRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code,omitempty"`
}

// AuthResult is returned by login and registration
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
