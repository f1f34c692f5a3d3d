// Package jwtx mints and verifies the signed session tokens handed out after
// a successful login. Tokens are symmetric (HS256) since only the auth
// service itself ever verifies them.
package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set carried by a session token.
type SessionClaims struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`

	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c SessionClaims) UserID() string { return c.Subject }
