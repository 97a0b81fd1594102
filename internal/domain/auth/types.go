package auth

// Package auth contains domain-level types for the session and
// authorization core. It is pure and free of framework/adapter concerns.

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the closed set of roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User is the identity snapshot returned by the backend's /auth/me.
// It is owned by the session controller and replaced wholesale on each
// successful identity fetch; callers must treat it as immutable.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Credentials is the opaque bearer token pair issued by the backend.
// The client never inspects token contents; the pair is either fully
// present or fully absent.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Valid reports whether both tokens are present. A pair missing either
// token is not a usable credential and must be treated as absent.
func (c Credentials) Valid() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}
