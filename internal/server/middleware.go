package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/blastoff/internal/shared"
)

type contextKey string

const sessionContextKey contextKey = "blastoff.session"

// sessionCookieName is the cookie carrying the opaque session identifier that
// scopes stored credentials.
const sessionCookieName = "blastoff_session"

// SessionID returns the request's session identifier, assigned by
// [SessionMiddleware]. Empty when the middleware is not installed.
func SessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionContextKey).(string)
	return id
}

// SessionMiddleware assigns each client an opaque session id cookie and puts
// it on the request context. Credentials are keyed by this id, so a client
// keeps its connections for as long as it keeps the cookie.
func SessionMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				id = cookie.Value
			} else {
				id = shared.GenerateID()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int((24 * time.Hour).Seconds()),
				})
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware logs each request with method, path, status, and duration.
func LoggingMiddleware(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// CORSMiddleware allows the configured frontend origin with credentials, so
// the session cookie survives cross-origin requests from the composer UI.
func CORSMiddleware(frontendURL string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if frontendURL != "" {
				w.Header().Set("Access-Control-Allow-Origin", frontendURL)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
