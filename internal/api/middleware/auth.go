package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/telecare/clinic-dashboard/backend/internal/domain/entities"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionResolver resolves a session token to a live session. A nil
// session without error means unauthenticated.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*entities.Session, error)
}

// SessionGate rejects requests that do not carry a live session
// cookie. Resolution is local; no gateway call happens per request.
// The resolved session is placed on the request context for handlers
// that need the caller's identity.
func SessionGate(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(cookieName); err == nil {
				token = cookie.Value
			}

			session, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				writeUnauthorized(w, "session lookup failed")
				return
			}
			if session == nil {
				writeUnauthorized(w, "authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session placed by SessionGate, or
// nil outside a gated route.
func SessionFromContext(ctx context.Context) *entities.Session {
	session, _ := ctx.Value(sessionContextKey).(*entities.Session)
	return session
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
