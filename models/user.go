package models

import "time"

// UserRole controls what API surfaces a user may touch.
// Admins are regular users with RoleAdmin; there is no separate admin table.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleStaff UserRole = "STAFF"
	RoleAdmin UserRole = "ADMIN"
)

// UserType is the kind of organization (or person) behind the account.
type UserType string

const (
	UserTypeHospital      UserType = "HOSPITAL"
	UserTypePharmacy      UserType = "PHARMACY"
	UserTypeMedicalCenter UserType = "MEDICAL_CENTER"
	UserTypeIndividual    UserType = "INDIVIDUAL"
)

// User represents an account in the system. It maps to the `users` table.
// PasswordHash is a bcrypt hash and never serialized.
type User struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	Type         UserType   `db:"type" json:"type"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`
}
