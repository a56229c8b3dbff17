package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/EasterCompany/dex-meetup-service/internal/identity"
	"github.com/EasterCompany/dex-meetup-service/types"
)

// SessionCookie is the cookie that carries the session id.
const SessionCookie = "session"

type contextKey int

const sessionKey contextKey = iota

// SessionLookup resolves a session id.
type SessionLookup interface {
	Get(ctx context.Context, id string) (*types.Session, error)
}

// SessionAuthMiddleware requires a live session, taken from the session
// cookie or an "Authorization: Bearer <id>" header.
func SessionAuthMiddleware(sessions SessionLookup, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := sessions.Get(r.Context(), SessionID(r))
		if err != nil {
			if !errors.Is(err, identity.ErrNoSession) {
				log.Printf("AUTH ERROR: session lookup failed: %v", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			http.Error(w, "Please sign in first!", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(WithSession(r.Context(), sess)))
	}
}

// SessionID extracts the session id from r, or "" when there is none.
func SessionID(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func WithSession(ctx context.Context, sess *types.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFrom returns the session attached by SessionAuthMiddleware.
func SessionFrom(ctx context.Context) (*types.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*types.Session)
	return sess, ok && sess != nil
}

// UserFrom returns the signed-in user.
func UserFrom(ctx context.Context) (types.User, bool) {
	sess, ok := SessionFrom(ctx)
	if !ok {
		return types.User{}, false
	}
	return sess.User, true
}
