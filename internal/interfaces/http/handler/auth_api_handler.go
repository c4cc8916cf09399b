package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/middleware"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

const authCookieTTL = 12 * time.Hour

type AuthAPIHandler struct {
	authConfig middleware.AuthConfig
	logger     *logger.Logger
	onFailure  func()
}

type authLoginRequest struct {
	Token string `json:"token"`
}

// NewAuthAPIHandler; onFailure is called on every rejected login (may be nil).
func NewAuthAPIHandler(authConfig middleware.AuthConfig, log *logger.Logger, onFailure func()) *AuthAPIHandler {
	return &AuthAPIHandler{
		authConfig: authConfig,
		logger:     log,
		onFailure:  onFailure,
	}
}

func (h *AuthAPIHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.authConfig.Enabled {
		middleware.WriteJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"auth_enabled": false,
		})
		return
	}

	var req authLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token := strings.TrimSpace(req.Token)
	if !middleware.TokenMatches(token, h.authConfig.BearerToken) {
		h.logger.Warn("Auth login failed", "remote_addr", r.RemoteAddr)
		if h.onFailure != nil {
			h.onFailure()
		}
		middleware.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	middleware.WriteAuthCookie(w, token, r.TLS != nil, int(authCookieTTL.Seconds()))
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"auth_enabled": true,
	})
}

func (h *AuthAPIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearAuthCookie(w, r.TLS != nil)
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AuthAPIHandler) Status(w http.ResponseWriter, r *http.Request) {
	err := middleware.ValidateRequestAuth(r, h.authConfig)
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"auth_enabled":   h.authConfig.Enabled,
		"authenticated":  err == nil,
		"cookie_present": hasAuthCookie(r),
	})
}

func hasAuthCookie(r *http.Request) bool {
	c, err := r.Cookie(middleware.AuthCookieName)
	if err != nil {
		return false
	}
	return strings.TrimSpace(c.Value) != ""
}
