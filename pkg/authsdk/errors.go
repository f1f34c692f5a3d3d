package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes used across the API.
const (
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeValidation         = "validation_error"
	ErrorCodeUsernameTaken      = "username_taken"
	ErrorCodeEmailTaken         = "email_taken"
	ErrorCodeConflict           = "conflict"
	ErrorCodeOTPNotFound        = "otp_not_found"
	ErrorCodeOTPExpired         = "otp_expired"
	ErrorCodeOTPExhausted       = "otp_attempts_exhausted"
	ErrorCodeOTPMismatch        = "otp_mismatch"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeBiometricMismatch  = "biometric_mismatch"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeRateLimitExceeded  = "rate_limit_exceeded"
	ErrorCodeServiceUnavailable = "unavailable"
	ErrorCodeServerError        = "server_error"
)

// APIError is the error shape every endpoint returns. It implements the
// error interface so the client can surface it directly, and it can write
// itself as an HTTP response on the server side.
type APIError struct {
	// StatusCode is the HTTP status for this error.
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description"`

	// Remaining is set only on otp_mismatch errors.
	Remaining *int `json:"remaining,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError as an HTTP response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}

// Predefined errors for conditions that carry no per-request detail.
var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the session token is missing, invalid, or expired",
	}

	ErrServiceUnavailable = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        ErrorCodeServiceUnavailable,
		Description: "the service is temporarily unable to handle the request",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "an unexpected internal error occurred",
	}
)
