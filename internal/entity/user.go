package entity

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User roles. Roles are additive; an Admin implies nothing about project
// membership, which is tracked per project in ProjectAccess.
const (
	RoleAdmin      = "Admin"
	RoleManager    = "Manager"
	RoleSupervisor = "Supervisor"
	RoleArtist     = "Artist"
	RoleClient     = "Client"
)

// User is independent of the project hierarchy. The credential is stored
// as a bcrypt hash, never in the clear.
type User struct {
	Base
	Email         string     `json:"email,omitempty"`
	PasswordHash  string     `json:"password_hash,omitempty"`
	Roles         []string   `json:"roles,omitempty"`
	ProjectAccess []string   `json:"project_access,omitempty"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}

// NewUser constructs a user with the given role set and hashes the
// password. An empty password leaves the credential unset, which makes
// Authenticate always fail for that user.
func NewUser(name, email, password string, roles []string) (*User, error) {
	u := &User{
		Base:  newBase(name, name),
		Email: email,
		Roles: roles,
	}
	if len(u.Roles) == 0 {
		u.Roles = []string{RoleArtist}
	}
	if password != "" {
		if err := u.SetPassword(password); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// Validate checks user invariants.
func (u *User) Validate() []Violation {
	vs := u.validateBase()
	if len(u.Roles) == 0 {
		vs = append(vs, Violation{Field: "roles", Msg: "at least one role is required"})
	}
	return vs
}

// SetPassword replaces the stored credential with a bcrypt hash of the
// given password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
