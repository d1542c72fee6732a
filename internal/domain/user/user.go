// Package user defines the platform account entity.
package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
)

// Role controls access to administrative routes.
type Role string

// Known roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// minPasswordLength mirrors the signup form's client-side rule.
const minPasswordLength = 6

// User is a registered account. PasswordHash is never serialized to clients.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user may manage content.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Registration is the input for creating an account.
type Registration struct {
	Name     string
	Email    string
	Password string
}

// Validate checks the signup payload.
func (r *Registration) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = "is required"
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		fields["email"] = "must be a valid email address"
	}
	if len(r.Password) < minPasswordLength {
		fields["password"] = "must be at least 6 characters"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// NormalizeEmail lowercases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
