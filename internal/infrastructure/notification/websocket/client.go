package websocket

import (
	"time"

	"github.com/dreschagin/uptime-dashboard/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	// must stay below pongWait
	pingPeriod = 54 * time.Second

	maxMessageSize = 512

	sendBuffer = 64
)

// Client is one browser websocket bound to a dashboard session.
type Client struct {
	conn      *websocket.Conn
	hub       *Hub
	sessionID string
	send      chan Message
	logger    *logger.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, sessionID string, logger *logger.Logger) *Client {
	return &Client{
		conn:      conn,
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan Message, sendBuffer),
		logger:    logger,
	}
}

func (c *Client) SessionID() string {
	return c.sessionID
}

// ReadPump drains control frames until the peer goes away.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("WebSocket close error", "error", err)
		}
	}()

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("WebSocket set read deadline error", err)
		return
	}
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error", err, "session", c.sessionID)
			}
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("WebSocket close error", "error", err)
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("WebSocket set write deadline error", err)
				return
			}
			if !ok {
				// hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("WebSocket write error", err, "session", c.sessionID)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("WebSocket set write deadline error", err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
