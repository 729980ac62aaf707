package model

import (
	"database/sql"
	"time"
)

// User status values stored in users.status.
const (
	UserActive    = "active"
	UserBanned    = "banned"
	UserSuspended = "suspended"
)

// Record status values shared by roles, user_roles, refresh_tokens, classes
// and bookings.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusCancelled = "cancelled"
	StatusRevoked   = "revoked"
)

// User represents an application user record as stored in the `users` table.
// Each field corresponds to a column. The json tags are omitted because
// these structs are used internally by the repository layer; handlers define
// separate response types with appropriate tags.
//
// Fields:
//
//	ID           – UUID primary key of the user.
//	Email        – unique email address (stored lowercase).
//	Username     – unique display name.
//	PasswordHash – bcrypt hashed password.
//	Status       – active, banned or suspended.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role represents a row in the `roles` table. Names are unique and stored
// lowercase ("admin", "client", "instructor").
type Role struct {
	ID          string
	Name        string
	Description sql.NullString
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserRole associates a user with a role. The (user_id, role_id) pair is
// unique; revocation flips status instead of deleting the row.
type UserRole struct {
	ID          string
	UserID      string
	RoleID      string
	Description sql.NullString
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RefreshToken models an entry in the `refresh_tokens` table. Each refresh
// token belongs to a user and carries expiry and revocation metadata. The
// plain token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt sql.NullTime
	Status    string
	CreatedAt time.Time
}
