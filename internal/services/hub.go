package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types pushed to connected clients
const (
	EventWindowOpen        = "window_open"
	EventMomentCreated     = "moment_created"
	EventFriendAdded       = "friend_added"
	EventFriendshipRemoved = "friendship_removed"
)

// Event is a typed message delivered over the websocket channel
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// wsConn wraps a websocket connection with a write mutex. The
// websocket package allows at most one concurrent writer, and events
// reach a connection from handler goroutines, the read loop, and the
// notifier's fire loop at once.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) close() {
	c.conn.Close()
}

// Hub manages websocket connections, one per user
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*wsConn
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*wsConn),
	}
}

// Register registers a websocket connection for a user, replacing any
// existing one
func (h *Hub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[userID]; ok {
		existing.close()
	}
	h.connections[userID] = &wsConn{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a user's websocket connection
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.connections[userID]; ok {
		conn.close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks if a user has a live connection
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// SendToUser delivers an event to one user
func (h *Hub) SendToUser(userID string, event Event) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := conn.write(data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send event: %w", err)
	}
	return nil
}

// SendToUsers delivers an event to every listed user that is online
func (h *Hub) SendToUsers(userIDs []string, event Event) {
	for _, id := range userIDs {
		if !h.IsOnline(id) {
			continue
		}
		if err := h.SendToUser(id, event); err != nil {
			log.Error().Err(err).Str("user_id", id).Str("event", event.Type).Msg("Failed to deliver event")
		}
	}
}

// Broadcast delivers an event to every connected user
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	ids := make([]string, 0, len(h.connections))
	for id := range h.connections {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	h.SendToUsers(ids, event)
}
