package domain

import "time"

// Role is the authorization level of an identity.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User models an identity known to the catalog. It never carries a password;
// credentials live only in the account directory.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Valid reports whether a hydrated identity has the fields the session needs.
func (u *User) Valid() bool {
	if u == nil || u.ID == "" || u.Email == "" {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleUser
}

// Account pairs an identity with the stored credential secret. The secret is
// either the plain password or a hash, depending on the configured verifier.
type Account struct {
	User   User   `json:"user"`
	Secret string `json:"secret"`
}
