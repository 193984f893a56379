package identity

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is a custom type for context keys
type contextKey string

// SessionContextKey is the key for storing session claims in context
const SessionContextKey contextKey = "session"

// Middleware validates the Bearer session token and injects the
// claims into the request context.
func Middleware(sm *SessionManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := sm.Validate(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext extracts the session claims injected by Middleware
func SessionFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(SessionContextKey).(*SessionClaims)
	return claims, ok
}
