package service

import (
	"errors"
	"fmt"

	"github.com/eventhive/auth/internal/auth/store"
)

// Failure kinds surfaced to callers. None of them is fatal at the process
// level; they are all expected, user-facing conditions.
var (
	ErrValidation     = errors.New("invalid input")
	ErrUsernameTaken  = errors.New("username is already taken")
	ErrEmailTaken     = errors.New("email is already registered")
	ErrOTPNotFound    = errors.New("no active verification code for this email")
	ErrOTPExpired     = errors.New("verification code has expired")
	ErrOTPExhausted   = errors.New("verification attempts exhausted")
	// ErrInvalidCredentials deliberately covers both unknown user and
	// wrong password so responses cannot be used for user enumeration.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrBiometricMismatch means the password was correct but the typing
	// pattern was not. Distinct from ErrInvalidCredentials so the UX can
	// differ without leaking password correctness elsewhere.
	ErrBiometricMismatch = errors.New("keystroke pattern does not match")
)

// OTPMismatchError reports a wrong code and how many tries are left before
// the challenge becomes exhausted.
type OTPMismatchError struct {
	Remaining int
}

func (e *OTPMismatchError) Error() string {
	return fmt.Sprintf("invalid verification code, %d attempts remaining", e.Remaining)
}

// storeErr wraps persistence failures. Known sentinels pass through;
// anything else is an infrastructure failure and gets tagged Unavailable so
// handlers degrade instead of misreporting it as a credential problem.
func storeErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrAlreadyExists) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, errors.Join(store.ErrUnavailable, err))
}
