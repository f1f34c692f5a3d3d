package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eventhive/auth/internal/auth/domain"
	"github.com/eventhive/auth/internal/auth/keystroke"
	"github.com/eventhive/auth/internal/auth/store"
	"github.com/eventhive/auth/pkg/cryptox"
	"github.com/eventhive/auth/pkg/idx"
)

// UserService owns user credentials: identity records, password hashes, and
// the enrolled keystroke pattern.
type UserService struct {
	Store store.Store
}

// CheckAvailability verifies that neither the username nor the normalized
// email is already registered.
func (s *UserService) CheckAvailability(ctx context.Context, username, email string) error {
	email = NormalizeEmail(email)

	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return storeErr("check email availability", err)
	}

	if _, err := s.Store.Users().GetUserByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return storeErr("check username availability", err)
	}

	return nil
}

// Register creates a local account. The password is hashed with bcrypt
// before anything touches the store; the enrolled pattern is persisted
// verbatim or left absent.
func (s *UserService) Register(ctx context.Context, username, email, password string, enrolled *keystroke.Pattern) (domain.User, error) {
	return s.register(ctx, s.Store, username, email, password, enrolled)
}

// register runs against an explicit store so registration can create the
// account inside the transaction that consumed its challenge.
func (s *UserService) register(ctx context.Context, st store.Store, username, email, password string, enrolled *keystroke.Pattern) (domain.User, error) {
	email = NormalizeEmail(email)
	username = strings.TrimSpace(username)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		ID:              idx.New().String(),
		Username:        username,
		Email:           email,
		PasswordHash:    hash,
		Role:            domain.RoleUser,
		EnrolledPattern: enrolled,
		// Registration only completes after OTP verification.
		EmailVerified: true,
	}

	if err := st.Users().CreateUser(ctx, u); err != nil {
		return domain.User{}, storeErr("create user", err)
	}

	return u, nil
}

// VerifyPassword checks a plaintext password for the user identified by
// username or normalized email. It fails closed: unknown user, absent
// password hash (federated-only accounts), or hash mismatch all yield
// ok=false without error. Only infrastructure failures return a non-nil
// error, so callers never mistake an outage for bad credentials.
func (s *UserService) VerifyPassword(ctx context.Context, identifier, password string) (domain.User, bool, error) {
	u, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}

	if u.PasswordHash == "" {
		return domain.User{}, false, nil
	}
	if cryptox.VerifyPassword(password, u.PasswordHash) != nil {
		return domain.User{}, false, nil
	}

	return u, true, nil
}

// GetEnrolledPattern returns the stored keystroke pattern, or nil when the
// user never enrolled one.
func (s *UserService) GetEnrolledPattern(ctx context.Context, identifier string) (*keystroke.Pattern, error) {
	u, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u.EnrolledPattern, nil
}

// RecordLogin bumps the last-login timestamp.
func (s *UserService) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	if err := s.Store.Users().UpdateLastLogin(ctx, userID, at); err != nil {
		return storeErr("update last login", err)
	}
	return nil
}

func (s *UserService) findByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, identifier)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, storeErr("load user by username", err)
	}

	u, err = s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(identifier))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, storeErr("load user by email", err)
	}
	return u, nil
}
