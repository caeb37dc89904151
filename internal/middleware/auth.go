package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fxrates/fxrates/internal/auth"
)

const (
	// minAuthDuration is the minimum time to spend on auth to prevent timing attacks.
	minAuthDuration = 200 * time.Millisecond
)

// AdminAuthConfig holds configuration for the admin auth middleware.
type AdminAuthConfig struct {
	Logger *slog.Logger
	// KeyHash is the argon2id hash of the admin key, PHC string format.
	KeyHash string
}

// AdminAuth returns a middleware that guards operational endpoints. The
// presented key is verified against the configured argon2id hash; no
// key store is involved.
func AdminAuth(cfg AdminAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minAuthDuration {
					time.Sleep(minAuthDuration - elapsed)
				}
			}()

			key := extractAPIKey(r)
			if key == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_key"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			match, err := auth.VerifyKey(key, cfg.KeyHash)
			if err != nil {
				cfg.Logger.Error("admin key hash is malformed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}
			if !match {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_key"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			cfg.Logger.Info("admin authentication successful",
				slog.String("ip", r.RemoteAddr),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			next.ServeHTTP(w, r)
		})
	}
}

// extractAPIKey extracts the API key from the request.
// Supports both "Authorization: Bearer <key>" and "X-API-Key: <key>" headers.
func extractAPIKey(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	return r.Header.Get("X-API-Key")
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"invalid or missing API key"}`))
}
