// Package models defines the server-side domain entities.
package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account. PasswordHash is a bcrypt hash; OTPSecret is set once
// the user enables the second factor.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash []byte
	OTPSecret    string
	OTPEnabled   bool
	Role         string
	CreatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
