package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/util"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Handler upgrades GET /ws?userId=<id>. A missing or invalid userId still
// gets a connection, but it is never registered for notifications.
func (h *Hub) Handler(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "ws.connect")

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		l.Warn("ws_upgrade_error", "status", 400, "error", err)
		return nil
	}

	userID, ok := util.ParseID(c.QueryParam("userId"))
	client := newClient(h, conn, userID)
	if ok {
		ok = h.enqueueRegister(client)
	}
	if ok {
		go client.writePump()
	}
	l.Info("ws_connected", "user_id", userID, "registered", ok)

	go client.readPump(ok)
	return nil
}
