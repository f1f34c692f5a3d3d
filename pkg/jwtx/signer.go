package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is how long a session token stays valid.
const DefaultSessionTTL = 24 * time.Hour

var (
	// ErrInvalidToken reports a token that failed signature or claim
	// validation, including expiry.
	ErrInvalidToken = errors.New("jwtx: invalid session token")
)

// Signer mints and verifies HS256 session tokens with a shared secret.
type Signer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// NewSigner returns a Signer. A zero ttl falls back to DefaultSessionTTL.
func NewSigner(secret, issuer string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Signer{Secret: []byte(secret), Issuer: issuer, TTL: ttl}
}

// Mint issues a signed session token for the given principal.
func (s *Signer) Mint(userID, username, role, sessionID string) (string, error) {
	now := time.Now().UTC()

	claims := SessionClaims{
		Username:  username,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign session token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a session token, returning its claims.
func (s *Signer) Verify(token string) (SessionClaims, error) {
	var claims SessionClaims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.Secret, nil
	}, jwt.WithIssuer(s.Issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return SessionClaims{}, ErrInvalidToken
	}

	return claims, nil
}
