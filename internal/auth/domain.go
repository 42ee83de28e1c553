package auth

import "time"

// User represents a cashier or admin account.
type User struct {
	ID           int64
	Username     string
	FullName     string
	PasswordHash string
	Role         string
	IsActive     bool
	// ForceReauth is set when a shift belonging to the user was closed
	// administratively; the user must re-enter credentials at next login.
	ForceReauth bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Roles recognised by the application.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)
