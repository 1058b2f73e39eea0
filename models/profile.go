package models

import "time"

// ProfileRole mirrors the profile_role ENUM in the database.
type ProfileRole string

const (
	RoleStudent     ProfileRole = "student"
	RoleCoordinator ProfileRole = "coordinator"
	RoleAdmin       ProfileRole = "admin"
)

// Profile is a fest participant or staff member. Offline profiles are
// created by staff for walk-in participants: they carry a generated
// email, an empty password hash and IsAdminCreated = true.
type Profile struct {
	ID             int         `json:"id" db:"id"`
	FullName       string      `json:"full_name" db:"full_name"`
	RollNumber     string      `json:"roll_number" db:"roll_number"`
	Department     string      `json:"department" db:"department"`
	Gender         string      `json:"gender" db:"gender"`
	Email          string      `json:"email" db:"email"`
	Phone          string      `json:"phone" db:"phone"`
	Role           ProfileRole `json:"role" db:"role"`
	Wins           int         `json:"wins" db:"wins"`
	IsAdminCreated bool        `json:"is_admin_created" db:"is_admin_created"`
	PasswordHash   string      `json:"-" db:"password_hash"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
