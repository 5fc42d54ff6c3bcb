// Package middleware provides HTTP middleware for the consolidator API.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/reportstack/consolidator/internal/session"
)

type ctxKey int

// sessionKey carries the resolved *session.Context in the request
// context.
const sessionKey ctxKey = 0

// SessionAuth returns middleware that resolves the Authorization bearer
// token to a live session and injects it into the request context.
// Requests without a valid session get 401.
func SessionAuth(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				slog.Warn("auth: missing session token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				unauthorized(w, "missing session token")
				return
			}

			sess, err := mgr.Get(token)
			if err != nil {
				slog.Warn("auth: invalid session token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				unauthorized(w, "session expired or invalid")
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session injected by SessionAuth, or nil
// when the request was not authenticated.
func SessionFromContext(ctx context.Context) *session.Context {
	sess, _ := ctx.Value(sessionKey).(*session.Context)
	return sess
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `","code":"AUTH001"}`))
}
