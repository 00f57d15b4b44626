package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// Credential is one user account: identity plus the bcrypt hash of its password.
// PasswordHash is only populated by the secret-inclusive store reads.
type Credential struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Public returns a copy safe to hand to callers.
func (c Credential) Public() Credential {
	c.PasswordHash = ""
	return c
}
