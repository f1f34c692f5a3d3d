package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/eventhive/auth/internal/auth/service"
	"github.com/eventhive/auth/pkg/authsdk"
	"github.com/eventhive/auth/pkg/httpx"
	"github.com/eventhive/auth/pkg/slogx"
)

// LoginHandler authenticates users.
type LoginHandler struct {
	Auth *service.AuthService
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Log in
//	@Description	Authenticates with a username or email plus password. When the account
//	@Description	has an enrolled keystroke pattern and the request carries a captured one,
//	@Description	the typing rhythm is checked as a second factor. A session cookie is set
//	@Description	on success and the token is also returned for non-browser clients.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials and optional keystroke capture"
//	@Success		200		{object}	authsdk.LoginResponse	"Authenticated"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid credentials or keystroke mismatch"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		503		{object}	authsdk.ErrorResponse	"Store unavailable"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	captured := patternFromRequest(req.KeystrokePattern, req.KeystrokeEvents)
	sess, err := h.Auth.Login(ctx, req.Identifier, req.Password, captured)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	setSessionCookie(w, sess)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		UserID:             sess.UserID,
		Username:           sess.Username,
		Role:               sess.Role,
		SessionEstablished: true,
		AccessToken:        sess.Token,
	})
}

// setSessionCookie attaches the session token as an HttpOnly cookie scoped
// to the whole site.
func setSessionCookie(w http.ResponseWriter, sess service.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie immediately.
func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
