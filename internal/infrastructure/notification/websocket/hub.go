package websocket

import (
	"context"
	"sync"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
)

const (
	MessageTypeStatusWall = "status_wall"
	MessageTypeAlert      = "alert"
	MessageTypeDashboard  = "dashboard"
)

// Message is the envelope written to every websocket client.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// outbound targets one session, or every client when sessionID is empty.
type outbound struct {
	sessionID string
	message   Message
}

// Hub fans dashboard updates out to websocket clients.
// It implements port.NotificationService.
type Hub struct {
	clients map[*Client]bool

	outbound   chan outbound
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	logger *logger.Logger
}

func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		outbound:   make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run serves registrations and deliveries until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("WebSocket hub started")

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.logger.Info("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client registered", "session", client.SessionID(), "total_clients", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Client unregistered", "total_clients", total)

		case out := <-h.outbound:
			h.deliver(out)
		}
	}
}

func (h *Hub) deliver(out outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if out.sessionID != "" && client.sessionID != out.sessionID {
			continue
		}
		select {
		case client.send <- out.message:
		default:
			// slow consumer
			close(client.send)
			delete(h.clients, client)
			h.logger.Warn("Client channel full, disconnected", "session", client.sessionID)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) enqueue(out outbound) {
	select {
	case h.outbound <- out:
	default:
		h.logger.Warn("Hub outbound channel full, dropping message", "type", out.message.Type)
	}
}

func (h *Hub) BroadcastStatusWall(wall *dto.StatusWallDTO) {
	if wall == nil {
		return
	}
	h.enqueue(outbound{message: Message{Type: MessageTypeStatusWall, Data: wall}})
}

func (h *Hub) BroadcastAlert(alert *dto.AlertDTO) {
	if alert == nil {
		return
	}
	h.enqueue(outbound{message: Message{Type: MessageTypeAlert, Data: alert}})
}

// SendDashboard delivers a view only to clients bound to sessionID.
func (h *Hub) SendDashboard(sessionID string, view *dto.DashboardViewDTO) {
	if view == nil || sessionID == "" {
		return
	}
	h.enqueue(outbound{sessionID: sessionID, message: Message{Type: MessageTypeDashboard, Data: view}})
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
