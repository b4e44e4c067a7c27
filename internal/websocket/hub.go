package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/notify"
)

type delivery struct {
	userID uint
	data   []byte
}

// Hub tracks the live connections of each user. Run owns all mutation of
// the client set; Notify only enqueues.
type Hub struct {
	clients    map[uint]map[*Client]struct{}
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	done       chan struct{}
	log        *slog.Logger
}

var _ notify.Notifier = (*Hub)(nil)

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[uint]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
		log:        log.With("component", "ws_hub"),
	}
}

// Run processes registrations and deliveries until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) error {
	defer func() {
		close(h.done)
		h.closeAll()
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case d := <-h.deliver:
			h.send(d)
		}
	}
}

func (h *Hub) enqueueRegister(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) enqueueUnregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.log.Debug("ws_client_registered", "user_id", c.userID, "connections", len(set))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	h.log.Debug("ws_client_unregistered", "user_id", c.userID)
}

func (h *Hub) send(d delivery) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.clients[d.userID]
	if len(set) == 0 {
		h.log.Debug("ws_notification_dropped", "user_id", d.userID, "reason", "no open connections")
		return
	}
	for c := range set {
		select {
		case c.send <- d.data:
		default:
			h.log.Warn("ws_notification_dropped", "user_id", d.userID, "reason", "client buffer full")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for uid, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, uid)
	}
}

// Notify queues msg for every open connection of userID. Messages for users
// with no open connection are lost.
func (h *Hub) Notify(ctx context.Context, userID uint, msg notify.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.FromContext(ctx).Error("ws_notify_error", "reason", "marshal", "error", err)
		return
	}
	select {
	case h.deliver <- delivery{userID: userID, data: data}:
	default:
		logging.FromContext(ctx).Warn("ws_notify_error", "reason", "hub queue full", "user_id", userID)
	}
}

func (h *Hub) ClientCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}
