package handler

import (
	"net/http"
	"net/url"
	"strings"

	wsInfra "github.com/dreschagin/uptime-dashboard/internal/infrastructure/notification/websocket"
	"github.com/dreschagin/uptime-dashboard/internal/interfaces/http/middleware"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
	"github.com/gorilla/websocket"
)

// WebSocketHandler upgrades /ws and binds the connection to the caller's
// dashboard session.
type WebSocketHandler struct {
	hub            *wsInfra.Hub
	logger         *logger.Logger
	allowedOrigins map[string]struct{}
	upgrader       websocket.Upgrader
}

func NewWebSocketHandler(hub *wsInfra.Hub, allowedOrigins []string, log *logger.Logger) *WebSocketHandler {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSuffix(strings.TrimSpace(origin), "/")
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	h := &WebSocketHandler{
		hub:            hub,
		logger:         log,
		allowedOrigins: originMap,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		// non-browser clients
		return true
	}
	if len(h.allowedOrigins) == 0 {
		return false
	}
	if _, ok := h.allowedOrigins["*"]; ok {
		return true
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}
	_, ok := h.allowedOrigins[parsed.Scheme+"://"+parsed.Host]
	return ok
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	sessionID := ""
	if sess := middleware.SessionFrom(r.Context()); sess != nil {
		sessionID = sess.ID()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err.Error())
		return
	}

	client := wsInfra.NewClient(h.hub, conn, sessionID, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
