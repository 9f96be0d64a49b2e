package websocket

// Central hub managing all connections, keyed by user ID.
// Each connection runs its own read and write pump goroutines; the hub map
// is guarded by a single RWMutex so Publish can fan out without blocking
// registrations behind channel round-trips.

import (
	"log/slog"
	"sync"

	"esporthub/internal/shared"
)

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool // userID -> set of connections

	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes register/unregister requests until Shutdown.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.add(client)
		case client := <-h.Unregister:
			h.remove(client)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Shutdown stops the hub loop and closes every connection.
func (h *Hub) Shutdown() {
	close(h.done)
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	slog.Info("websocket client registered", "user_id", client.UserID, "connections", len(h.clients[client.UserID]))
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[client.UserID]; ok {
		if conns[client] {
			delete(conns, client)
			close(client.SendChannel)
		}
		if len(conns) == 0 {
			delete(h.clients, client.UserID)
		}
		slog.Info("websocket client unregistered", "user_id", client.UserID, "remaining", len(conns))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			close(client.SendChannel)
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}

// Publish delivers the event to every connection of the target user. A
// connection with a full send buffer is skipped rather than blocking the
// caller; its write pump will fall behind and the heartbeat will reap it.
func (h *Hub) Publish(userID string, event *shared.Event) {
	data, err := event.ToJSON()
	if err != nil {
		slog.Error("failed to marshal realtime event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.clients[userID]
	if !ok {
		return
	}
	for client := range conns {
		select {
		case client.SendChannel <- data:
		default:
			slog.Warn("dropping event for slow websocket client", "user_id", userID, "client_id", client.ID)
		}
	}
}

// ConnectionCount returns the number of live connections for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// TotalConnections returns the number of live connections across all users.
func (h *Hub) TotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}
