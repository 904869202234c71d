package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/swastiapp/swasti-server/internal/http/response"
	"github.com/swastiapp/swasti-server/internal/state"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyStores contextKey = "stores"

// bearerToken extracts the token from the Authorization header, or "".
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// withSession resolves the caller's store context from the bearer token and
// attaches it to the request. Requests without a valid token proceed with an
// anonymous context.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if storeContext(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}

		sc, err := s.registry.For(r.Context(), bearerToken(r))
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyStores, sc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth resolves the store context like withSession and rejects the
// request when no verified user is bound to it.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return s.withSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := storeContext(r.Context())
		if sc == nil || sc.Session.User() == nil || sc.Session.NeedsVerification() {
			response.Unauthorized(w, "authentication required", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// rateLimitAuth throttles credential-guessing on the auth endpoints per
// client IP.
func (s *Server) rateLimitAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authLimiter.Allow(r.RemoteAddr) {
			response.TooManyRequests(w, "too many attempts, slow down", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// storeContext extracts the store context attached by withSession.
func storeContext(ctx context.Context) *state.Context {
	if sc, ok := ctx.Value(contextKeyStores).(*state.Context); ok {
		return sc
	}
	return nil
}
