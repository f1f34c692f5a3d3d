package domain

import (
	"time"

	"github.com/eventhive/auth/internal/auth/keystroke"
)

// Roles assignable to a user account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              string
	Username        string             // unique
	Email           string             // unique, stored lowercase
	PasswordHash    string             // bcrypt encoded; empty for federated-only accounts
	Role            string             // RoleUser or RoleAdmin
	EnrolledPattern *keystroke.Pattern // nil when the user never enrolled a typing pattern
	EmailVerified   bool
	LastLoginAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
