// Package jwtx signs and verifies the service's EdDSA access tokens.
// Keys are generated fresh at startup; tokens do not outlive the
// process that minted them, which is all the dashboard needs.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default lifetime for access tokens.
const DefaultAccessTokenTTL = 1 * time.Hour

var (
	ErrTokenInvalid = errors.New("jwtx: token invalid")
	ErrTokenExpired = errors.New("jwtx: token expired")
)

// Claims is the token payload: the authenticated principal's id,
// username and role, plus the registered claims.
type Claims struct {
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ValidateExpiry checks the exp claim against the current time.
func (c Claims) ValidateExpiry() error {
	if c.ExpiresAt == nil || time.Now().After(c.ExpiresAt.Time) {
		return ErrTokenExpired
	}
	return nil
}
