package http

import (
	"encoding/json"
	"net/http"

	"github.com/eventhive/auth/internal/auth/domain"
	"github.com/eventhive/auth/internal/auth/service"
	"github.com/eventhive/auth/pkg/authsdk"
	"github.com/eventhive/auth/pkg/httpx"
	"github.com/eventhive/auth/pkg/slogx"
)

// OTPHandler handles the email verification endpoints.
type OTPHandler struct {
	Auth *service.AuthService
}

// HandleIssue handles POST /v1/otp/issue
//
//	@Summary		Issue an email verification code
//	@Description	Checks that the username and email are available and emails a 6-digit
//	@Description	verification code. Any previously issued code for the email is invalidated.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.OTPIssueRequest		true	"Email and desired username"
//	@Success		200		{object}	authsdk.OTPIssueResponse	"Code issued"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Invalid email or username"
//	@Failure		409		{object}	authsdk.ErrorResponse		"Username or email already taken"
//	@Failure		429		{object}	authsdk.ErrorResponse		"Rate limit exceeded"
//	@Router			/v1/otp/issue [post].
func (h *OTPHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.OTPIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if _, err := h.Auth.StartRegistration(ctx, req.Username, req.Email); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.OTPIssueResponse{
		Issued:    true,
		ExpiresIn: int(domain.OTPLifetime.Seconds()),
	})
}

// HandleVerify handles POST /v1/otp/verify
//
//	@Summary		Verify an email verification code
//	@Description	Checks a submitted code against the active challenge for the email.
//	@Description	A correct code consumes the challenge; a wrong one costs an attempt and
//	@Description	reports how many remain. After 3 wrong attempts or 5 minutes the
//	@Description	challenge is void and a new code must be requested.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.OTPVerifyRequest	true	"Email and code"
//	@Success		200		{object}	authsdk.OTPVerifyResponse	"Code accepted"
//	@Failure		400		{object}	authsdk.ErrorResponse		"No active code, expired, exhausted, or mismatch"
//	@Failure		429		{object}	authsdk.ErrorResponse		"Rate limit exceeded"
//	@Router			/v1/otp/verify [post].
func (h *OTPHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.OTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.Auth.OTP.Verify(ctx, req.Email, req.Code); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.OTPVerifyResponse{Verified: true})
}
