package websocket

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dreschagin/uptime-dashboard/internal/application/dto"
	"github.com/dreschagin/uptime-dashboard/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(logger.NewWithWriter("error", io.Discard))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return Message{}
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message %q", msg.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SendDashboardTargetsSession(t *testing.T) {
	hub := startHub(t)
	a := &Client{hub: hub, sessionID: "a", send: make(chan Message, 4)}
	b := &Client{hub: hub, sessionID: "b", send: make(chan Message, 4)}
	hub.Register(a)
	hub.Register(b)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.SendDashboard("a", &dto.DashboardViewDTO{SessionID: "a", State: dto.ViewStateReady})

	msg := receive(t, a)
	assert.Equal(t, MessageTypeDashboard, msg.Type)
	assert.Equal(t, "a", msg.Data.(*dto.DashboardViewDTO).SessionID)
	assertSilent(t, b)
}

func TestHub_BroadcastsReachEveryone(t *testing.T) {
	hub := startHub(t)
	a := &Client{hub: hub, sessionID: "a", send: make(chan Message, 4)}
	b := &Client{hub: hub, sessionID: "b", send: make(chan Message, 4)}
	hub.Register(a)
	hub.Register(b)

	hub.BroadcastStatusWall(&dto.StatusWallDTO{})
	hub.BroadcastAlert(&dto.AlertDTO{SiteName: "api", From: "ok", To: "down"})

	for _, c := range []*Client{a, b} {
		assert.Equal(t, MessageTypeStatusWall, receive(t, c).Type)
		alert := receive(t, c)
		assert.Equal(t, MessageTypeAlert, alert.Type)
		assert.Equal(t, "api", alert.Data.(*dto.AlertDTO).SiteName)
	}
}

func TestHub_NilPayloadsIgnored(t *testing.T) {
	hub := startHub(t)
	a := &Client{hub: hub, sessionID: "a", send: make(chan Message, 4)}
	hub.Register(a)

	hub.BroadcastStatusWall(nil)
	hub.BroadcastAlert(nil)
	hub.SendDashboard("a", nil)
	hub.SendDashboard("", &dto.DashboardViewDTO{})

	assertSilent(t, a)
}

func TestHub_SlowClientDisconnected(t *testing.T) {
	hub := startHub(t)
	slow := &Client{hub: hub, sessionID: "slow", send: make(chan Message)}
	hub.Register(slow)

	hub.BroadcastStatusWall(&dto.StatusWallDTO{})

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-slow.send
	assert.False(t, ok)
}

func TestClient_WritesOverWebsocket(t *testing.T) {
	hub := startHub(t)
	upgrader := websocket.Upgrader{}
	log := logger.NewWithWriter("error", io.Discard)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("session"), log)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?session=s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.SendDashboard("s1", &dto.DashboardViewDTO{SessionID: "s1", State: dto.ViewStateLoading})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got struct {
		Type string `json:"type"`
		Data struct {
			SessionID string `json:"session_id"`
			State     string `json:"state"`
		} `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, MessageTypeDashboard, got.Type)
	assert.Equal(t, "s1", got.Data.SessionID)
	assert.Equal(t, "loading", got.Data.State)
}
