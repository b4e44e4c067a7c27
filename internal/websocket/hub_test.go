package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/markethub/internal/notify"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.Run(ctx) }()

	e := echo.New()
	e.GET("/ws", hub.Handler)
	srv := httptest.NewServer(e)

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) notify.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg notify.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_DeliversToEveryConnectionOfUser(t *testing.T) {
	hub, srv := startHub(t)

	c1 := dial(t, srv, "?userId=5")
	c2 := dial(t, srv, "?userId=5")
	other := dial(t, srv, "?userId=6")
	require.Eventually(t, func() bool { return hub.ClientCount(5) == 2 && hub.ClientCount(6) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Notify(context.Background(), 5, notify.OrderMessage(42, "Order placed successfully"))

	for _, c := range []*websocket.Conn{c1, c2} {
		msg := readMessage(t, c)
		assert.Equal(t, notify.TypeOrder, msg.Type)
		assert.EqualValues(t, 42, msg.OrderID)
		assert.Equal(t, "Order placed successfully", msg.Message)
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_InvalidUserIDIsNotRegistered(t *testing.T) {
	hub, srv := startHub(t)

	dial(t, srv, "?userId=0")
	dial(t, srv, "?userId=abc")
	dial(t, srv, "")

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, hub.TotalClients())
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv, "?userId=9")
	require.Eventually(t, func() bool { return hub.ClientCount(9) == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount(9) == 0 }, 2*time.Second, 10*time.Millisecond)

	hub.Notify(context.Background(), 9, notify.OrderMessage(1, "lost"))
}

func TestHub_NotifyWithoutRunDoesNotBlock(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Notify(context.Background(), 1, notify.OrderMessage(uint(i), "x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked")
	}
}
