package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/eventhive/auth/internal/auth/domain"
	"github.com/eventhive/auth/internal/auth/keystroke"
	"github.com/eventhive/auth/internal/auth/store"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minUsernameLength = 3
	minPasswordLength = 4
)

// AuthService orchestrates the two-step registration flow and password +
// keystroke login on top of the narrower services.
type AuthService struct {
	Store    store.Store
	Users    *UserService
	OTP      *OTPService
	Sessions *SessionService
	Logger   *slog.Logger
}

// RegistrationRequest carries everything the user submits on the first
// registration step. The enrolled pattern is optional.
type RegistrationRequest struct {
	Username string
	Email    string
	Password string
	Enrolled *keystroke.Pattern
}

// StartRegistration checks that the username and email are free and issues
// an OTP challenge to the email. Nothing is persisted about the user yet;
// the client submits the full details together with the code to
// ConfirmRegistration.
func (s *AuthService) StartRegistration(ctx context.Context, username, email string) (time.Time, error) {
	username = strings.TrimSpace(username)
	if !emailPattern.MatchString(NormalizeEmail(email)) || len(username) < minUsernameLength {
		return time.Time{}, ErrValidation
	}

	if err := s.Users.CheckAvailability(ctx, username, email); err != nil {
		return time.Time{}, err
	}

	expiresAt, err := s.OTP.Issue(ctx, email, username)
	if err != nil {
		return time.Time{}, err
	}

	s.Logger.InfoContext(ctx, "registration_started",
		"username", username,
		"otp_expires_at", expiresAt,
	)
	return expiresAt, nil
}

// ConfirmRegistration consumes the OTP code and, on success, creates the
// account. Consumption and creation share one transaction: a conflicting
// signup racing between the two steps trips the store's unique constraints
// and rolls the consumption back, so the challenge stays spendable on a
// retry instead of burning the code without an account.
func (s *AuthService) ConfirmRegistration(ctx context.Context, req RegistrationRequest, code string) (Session, error) {
	if err := validateRegistration(req); err != nil {
		return Session{}, err
	}

	ch, err := s.OTP.check(ctx, req.Email, code)
	if err != nil {
		return Session{}, err
	}

	var u domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.OTP.consume(ctx, tx, ch); err != nil {
			return err
		}

		var err error
		u, err = s.Users.register(ctx, tx, req.Username, req.Email, req.Password, req.Enrolled)
		return err
	})
	if err != nil {
		return Session{}, err
	}

	sess, err := s.Sessions.Establish(ctx, u)
	if err != nil {
		return Session{}, err
	}

	s.Logger.InfoContext(ctx, "registration_completed",
		"user_id", u.ID,
		"username", u.Username,
		"pattern_enrolled", u.EnrolledPattern != nil,
	)
	return sess, nil
}

// Login authenticates with a password and, when both sides have a keystroke
// pattern, the typing rhythm as a second factor.
//
// The biometric check is advisory when either side lacks a pattern: a user
// who never enrolled, or a client that could not capture events, still logs
// in on the password alone. Only an actual pattern comparison failure
// rejects the login.
func (s *AuthService) Login(ctx context.Context, identifier, password string, captured *keystroke.Pattern) (Session, error) {
	u, ok, err := s.Users.VerifyPassword(ctx, identifier, password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrInvalidCredentials
	}

	if u.EnrolledPattern != nil && captured != nil {
		if !keystroke.Match(u.EnrolledPattern, captured, keystroke.DefaultTolerance) {
			s.Logger.WarnContext(ctx, "keystroke_mismatch",
				"user_id", u.ID,
				"username", u.Username,
			)
			return Session{}, ErrBiometricMismatch
		}
	}

	// Best effort: a failed timestamp write must not block the login.
	if err := s.Users.RecordLogin(ctx, u.ID, time.Now().UTC()); err != nil {
		s.Logger.WarnContext(ctx, "record_login_failed",
			"user_id", u.ID,
			"error", err,
		)
	}

	sess, err := s.Sessions.Establish(ctx, u)
	if err != nil {
		return Session{}, err
	}

	s.Logger.InfoContext(ctx, "login_succeeded",
		"user_id", u.ID,
		"username", u.Username,
		"biometric_checked", u.EnrolledPattern != nil && captured != nil,
	)
	return sess, nil
}

func validateRegistration(req RegistrationRequest) error {
	if !emailPattern.MatchString(NormalizeEmail(req.Email)) {
		return ErrValidation
	}
	if len(strings.TrimSpace(req.Username)) < minUsernameLength {
		return ErrValidation
	}
	if len(req.Password) < minPasswordLength {
		return ErrValidation
	}
	return nil
}
