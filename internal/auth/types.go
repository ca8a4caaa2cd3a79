package auth

import (
	"errors"
	"regexp"
	"time"
)

// Role determines which API operations a user may perform.
type Role string

const (
	// RoleAdmin grants full access, including user management.
	RoleAdmin Role = "admin"
	// RoleOperator may modify inventory but not manage users.
	RoleOperator Role = "operator"
	// RoleViewer has read-only access.
	RoleViewer Role = "viewer"
)

// IsValidRole reports whether r is a member of the closed role set.
func IsValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// User is an account stored in the database.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the authenticated principal attached to a request after
// token validation. It carries only what authorization decisions need.
type Identity struct {
	UserID   string
	Username string
	Role     Role
}

// Sentinel errors returned by the auth package. Callers branch on these
// with errors.Is; the API layer maps them onto HTTP statuses.
var (
	// ErrInvalidCredentials covers every login failure the client is
	// allowed to learn about: unknown username, inactive account, or
	// wrong password. Collapsing them prevents account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned by repository lookups for admin
	// operations, where hiding existence serves no purpose.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when creating a user with a
	// username that is already taken.
	ErrUsernameExists = errors.New("username already exists")

	// ErrTokenInvalid covers malformed, tampered, or wrongly signed
	// tokens.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned for structurally valid tokens whose
	// expiry has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidRole is returned when a role outside the closed set is
	// encountered, either at token issuance or in a stored user row.
	ErrInvalidRole = errors.New("invalid role")

	// ErrForbidden is returned when an authenticated identity lacks the
	// role required for an operation.
	ErrForbidden = errors.New("insufficient rights")
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{2,31}$`)

// IsValidUsername reports whether s is an acceptable username: lowercase
// alphanumeric with underscore, dot, or hyphen, 3 to 32 characters,
// starting with a letter or digit.
func IsValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}
