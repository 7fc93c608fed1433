package models

import "time"

// UserRole defines the access level of a salon user account.
type UserRole string

const (
	RoleAdmin        UserRole = "admin"
	RoleStaff        UserRole = "staff"
	RoleReceptionist UserRole = "receptionist"
)

// IsValidUserRole checks if the provided string is a known role.
func IsValidUserRole(role string) bool {
	switch UserRole(role) {
	case RoleAdmin, RoleStaff, RoleReceptionist:
		return true
	default:
		return false
	}
}

// User represents a staff, receptionist or admin account.
type User struct {
	ID           int64      `json:"id" db:"id"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Email        string     `json:"email" db:"email"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	PasswordHash string     `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Role         UserRole   `json:"role" db:"role"`
	Position     *string    `json:"position,omitempty" db:"position"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name the way it is shown on receipts and tokens.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserRef is a lightweight reference to a user embedded in visit responses.
type UserRef struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
