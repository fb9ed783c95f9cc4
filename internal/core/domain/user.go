package domain

import "time"

// UserRole enumerates the roles a user can hold.
type UserRole string

const (
	UserRoleUser    UserRole = "user"
	UserRoleAuditor UserRole = "auditor"
	UserRoleAdmin   UserRole = "admin"
)

// UserStatus enumerates possible account states.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusLocked    UserStatus = "locked"
	UserStatusDisabled  UserStatus = "disabled"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusExpired   UserStatus = "expired"
)

// User mirrors the persisted representation in the users table.
// Email is stored lowercase; uniqueness is case-insensitive.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	RegisteredAt time.Time
	LastLogin    *time.Time
}

// RoleNames returns the roles claim carried in issued tokens.
func (u User) RoleNames() []string {
	if u.Role == "" {
		return []string{string(UserRoleUser)}
	}
	return []string{string(u.Role)}
}
