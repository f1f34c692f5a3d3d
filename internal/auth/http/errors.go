package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/eventhive/auth/internal/auth/service"
	"github.com/eventhive/auth/internal/auth/store"
	"github.com/eventhive/auth/pkg/authsdk"
)

// writeServiceError maps a service failure onto the API error shape.
// Store unavailability maps to 503 and is checked before the credential
// failures so an outage is never reported as bad credentials.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var mismatch *service.OTPMismatchError
	switch {
	case errors.Is(err, store.ErrUnavailable):
		log.Error("store unavailable", "err", err)
		authsdk.ErrServiceUnavailable.WriteError(w)

	case errors.Is(err, service.ErrValidation):
		apiError(http.StatusBadRequest, authsdk.ErrorCodeValidation,
			"One or more submitted fields are invalid").WriteError(w)

	case errors.Is(err, service.ErrUsernameTaken):
		apiError(http.StatusConflict, authsdk.ErrorCodeUsernameTaken,
			"This username is already taken").WriteError(w)

	case errors.Is(err, service.ErrEmailTaken):
		apiError(http.StatusConflict, authsdk.ErrorCodeEmailTaken,
			"This email address is already registered").WriteError(w)

	case errors.Is(err, store.ErrAlreadyExists):
		apiError(http.StatusConflict, authsdk.ErrorCodeConflict,
			"The username or email was registered by someone else first").WriteError(w)

	case errors.Is(err, service.ErrOTPNotFound):
		apiError(http.StatusBadRequest, authsdk.ErrorCodeOTPNotFound,
			"No active verification code for this email, request a new one").WriteError(w)

	case errors.Is(err, service.ErrOTPExpired):
		apiError(http.StatusBadRequest, authsdk.ErrorCodeOTPExpired,
			"The verification code has expired, request a new one").WriteError(w)

	case errors.Is(err, service.ErrOTPExhausted):
		apiError(http.StatusBadRequest, authsdk.ErrorCodeOTPExhausted,
			"Too many wrong codes, request a new one").WriteError(w)

	case errors.As(err, &mismatch):
		e := apiError(http.StatusBadRequest, authsdk.ErrorCodeOTPMismatch,
			"The verification code is incorrect")
		remaining := mismatch.Remaining
		e.Remaining = &remaining
		e.WriteError(w)

	case errors.Is(err, service.ErrInvalidCredentials):
		apiError(http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials,
			"Invalid username or password").WriteError(w)

	case errors.Is(err, service.ErrBiometricMismatch):
		apiError(http.StatusUnauthorized, authsdk.ErrorCodeBiometricMismatch,
			"Typing pattern did not match the enrolled pattern").WriteError(w)

	default:
		log.Error("unhandled service error", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

func apiError(status int, code, description string) *authsdk.APIError {
	return &authsdk.APIError{StatusCode: status, Code: code, Description: description}
}
