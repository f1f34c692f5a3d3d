package service

import (
	"context"
	"fmt"
	"time"

	"github.com/eventhive/auth/internal/auth/domain"
	"github.com/eventhive/auth/pkg/idx"
	"github.com/eventhive/auth/pkg/jwtx"
)

// Session is an established login: a signed bearer token plus the identity
// it encodes.
type Session struct {
	Token     string
	SessionID string
	UserID    string
	Username  string
	Role      string
	ExpiresAt time.Time
}

// SessionService mints and verifies stateless session tokens.
type SessionService struct {
	Signer *jwtx.Signer
}

// Establish mints a session token for a freshly authenticated user.
func (s *SessionService) Establish(ctx context.Context, u domain.User) (Session, error) {
	sid := idx.New().String()

	token, err := s.Signer.Mint(u.ID, u.Username, u.Role, sid)
	if err != nil {
		return Session{}, fmt.Errorf("mint session token: %w", err)
	}

	return Session{
		Token:     token,
		SessionID: sid,
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		ExpiresAt: time.Now().UTC().Add(s.Signer.TTL),
	}, nil
}

// Verify parses and validates a session token.
func (s *SessionService) Verify(ctx context.Context, token string) (jwtx.SessionClaims, error) {
	return s.Signer.Verify(token)
}
