package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/eventhive/auth/pkg/idx"
	"github.com/eventhive/auth/pkg/jwtx"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "eventhive_session"

// AuthnMiddleware validates the session token from the session cookie or an
// Authorization: Bearer header and injects the principal into the request
// context. Requests without a valid token get 401.
func AuthnMiddleware(signer *jwtx.Signer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractSessionToken(r)
			if token == "" {
				WriteError(w, http.StatusUnauthorized, "invalid_token", "Missing session token")
				return
			}

			claims, err := signer.Verify(token)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired session token")
				return
			}

			// Subjects are ULIDs. A token that validates but carries a
			// mangled principal is still rejected.
			uid, err := idx.Parse(claims.UserID())
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "invalid_token", "Invalid session principal")
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, CtxKeyUserID, uid.String())
			ctx = context.WithValue(ctx, CtxKeyUsername, claims.Username)
			ctx = context.WithValue(ctx, CtxKeyRole, claims.Role)
			ctx = context.WithValue(ctx, CtxKeySessionID, claims.SessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractSessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}
