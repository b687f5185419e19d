package domain

import "time"

// Role is a closed set of role identifiers. Permissions are resolved from
// the role through the PermissionRegistry, never stored per user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// User represents an account able to authenticate against the API.
// LoginAttempts and LockUntil are mutated only by the lockout policy and the
// login flow; everything else belongs to user management.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	IsActive     bool   `json:"is_active"`

	LoginAttempts int        `json:"-"`
	LockUntil     *time.Time `json:"-"`
	LastLogin     *time.Time `json:"last_login,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is the public projection returned by the login endpoint.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Summary strips everything a client must not see.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Role: u.Role}
}
