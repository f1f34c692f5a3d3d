package http

import (
	"encoding/json"
	"net/http"

	"github.com/eventhive/auth/internal/auth/service"
	"github.com/eventhive/auth/pkg/authsdk"
	"github.com/eventhive/auth/pkg/httpx"
	"github.com/eventhive/auth/pkg/slogx"
)

// RegisterHandler completes signups.
type RegisterHandler struct {
	Auth *service.AuthService
}

// HandleRegister handles POST /v1/auth/register
//
//	@Summary		Complete a registration
//	@Description	Creates the account after verifying the emailed code. The optional
//	@Description	keystroke enrollment may be submitted pre-extracted (keystroke_pattern)
//	@Description	or as raw capture events (keystroke_events); raw events are reduced to a
//	@Description	fingerprint server-side. A session cookie is set on success.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest		true	"Account details plus emailed code"
//	@Success		201		{object}	authsdk.RegisterResponse	"Account created"
//	@Failure		400		{object}	authsdk.ErrorResponse		"Validation or OTP failure"
//	@Failure		409		{object}	authsdk.ErrorResponse		"Username or email already taken"
//	@Failure		429		{object}	authsdk.ErrorResponse		"Rate limit exceeded"
//	@Failure		503		{object}	authsdk.ErrorResponse		"Store unavailable"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	sess, err := h.Auth.ConfirmRegistration(ctx, service.RegistrationRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Enrolled: patternFromRequest(req.KeystrokePattern, req.KeystrokeEvents),
	}, req.Code)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	setSessionCookie(w, sess)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		UserID:   sess.UserID,
		Username: sess.Username,
		Email:    service.NormalizeEmail(req.Email),
		Role:     sess.Role,
	})
}
