package domain

import "time"

// Credential is a stored account record, keyed by the normalized id
// derived from the username.
type Credential struct {
	ID           string
	Name         string
	Username     string
	PasswordHash string // legacy sha256 hex digest or argon2id PHC string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time // nil until first successful sign-in
}

// Principal strips the credential down to its public identity.
func (c Credential) Principal() Principal {
	return Principal{
		ID:          c.ID,
		DisplayName: c.Name,
		Username:    c.Username,
		Role:        c.Role,
	}
}
