package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

var ErrUnauthorized = errors.New("unauthorized")

type AuthConfig struct {
	Enabled     bool
	BearerToken string
}

const AuthCookieName = "uptime_auth_token"

// Auth guards handlers with a shared bearer token.
// onReject, when set, is called for every rejected request.
func Auth(cfg AuthConfig, log *logger.Logger, onReject func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ValidateRequestAuth(r, cfg); err != nil {
				log.Warn("Unauthorized request",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				if onReject != nil {
					onReject()
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="uptime-dashboard"`)
				WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ValidateRequestAuth(r *http.Request, cfg AuthConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if !TokenMatches(ExtractToken(r), cfg.BearerToken) {
		return ErrUnauthorized
	}
	return nil
}

// TokenMatches compares in constant time; an empty expected token never matches.
func TokenMatches(got, expected string) bool {
	expected = strings.TrimSpace(expected)
	if expected == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

func ExtractToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if c, err := r.Cookie(AuthCookieName); err == nil {
		if value := strings.TrimSpace(c.Value); value != "" {
			return value
		}
	}

	// browsers cannot set headers on new WebSocket()
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func WriteAuthCookie(w http.ResponseWriter, token string, secure bool, maxAgeSeconds int) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAgeSeconds,
	})
}

func ClearAuthCookie(w http.ResponseWriter, secure bool) {
	WriteAuthCookie(w, "", secure, -1)
}
