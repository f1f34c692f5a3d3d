package http

import (
	"net/http"

	"github.com/eventhive/auth/pkg/authsdk"
	"github.com/eventhive/auth/pkg/httpx"
)

// SessionHandler serves the session introspection endpoints. Tokens are
// stateless, so logout just clears the cookie client-side.
type SessionHandler struct{}

// HandleMe handles GET /v1/session/me
//
//	@Summary		Current session principal
//	@Description	Returns the identity bound to the session token.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.PrincipalResponse	"Principal"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing session token"
//	@Router			/v1/session/me [get].
func (h *SessionHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value(httpx.CtxKeyUserID).(string)
	if !ok || userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}
	username, _ := ctx.Value(httpx.CtxKeyUsername).(string)
	role, _ := ctx.Value(httpx.CtxKeyRole).(string)
	sessionID, _ := ctx.Value(httpx.CtxKeySessionID).(string)

	httpx.WriteJSON(w, http.StatusOK, authsdk.PrincipalResponse{
		UserID:    userID,
		Username:  username,
		Role:      role,
		SessionID: sessionID,
	})
}

// HandleLogout handles POST /v1/session/logout
//
//	@Summary		Log out
//	@Description	Clears the session cookie. Succeeds whether or not a session exists.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.LogoutResponse	"Cookie cleared"
//	@Router			/v1/session/logout [post].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LogoutResponse{LoggedOut: true})
}
