package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/platewise/checkout-api/internal/session"
)

type contextKey string

const sessionKey contextKey = "session"

// CookieName is the browser cookie carrying the session token.
const CookieName = "checkout_session"

// Session ensures every request carries a valid browsing session. A request
// with a valid token (Authorization bearer or cookie) keeps its session; any
// other request gets a fresh one, with the token set as a cookie on the
// response. Unlike an auth middleware this never rejects: an anonymous
// shopper is the normal case, not an error.
func Session(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := sessionFromRequest(secret, r); ok {
				next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), id)))
				return
			}

			id := uuid.New()
			token, err := session.GenerateToken(secret, id)
			if err != nil {
				log.Printf("ERROR: generate session token: %v", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     "/",
				Expires:  time.Now().Add(session.TTL),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(withSessionID(r.Context(), id)))
		})
	}
}

// sessionFromRequest extracts and validates the session token from the
// bearer header or the session cookie.
func sessionFromRequest(secret string, r *http.Request) (uuid.UUID, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if claims, err := session.ValidateToken(secret, parts[1]); err == nil {
				return claims.SessionID, true
			}
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		if claims, err := session.ValidateToken(secret, cookie.Value); err == nil {
			return claims.SessionID, true
		}
	}
	return uuid.Nil, false
}

func withSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// SessionIDFromContext returns the request's session ID. ok is false only if
// the middleware did not run.
func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionKey).(uuid.UUID)
	return id, ok
}
