// Package api implements the Content OS REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/sanhik/contentos/internal/auth"
)

type ctxKey int

const identityKey ctxKey = 0

// DevIdentity is the identity assigned to every request when auth is
// disabled (local single-user mode).
const DevIdentity = "local"

// Identity returns the authenticated username for a request.
func Identity(r *http.Request) string {
	if id, ok := r.Context().Value(identityKey).(string); ok {
		return id
	}
	return ""
}

// AuthMiddleware returns middleware that validates a Bearer JWT and puts
// the authenticated username into the request context. If enabled is
// false, all requests pass through as DevIdentity.
func AuthMiddleware(enabled bool, tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, DevIdentity)))
				return
			}
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, claims.Subject)))
		})
	}
}
