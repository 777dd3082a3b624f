package handlers

import (
	"encoding/json"
	"net/http"

	"daily-moments-backend/internal/middleware"
	"daily-moments-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles websocket connections
type WebSocketHandler struct {
	hub            *services.Hub
	profileService *services.ProfileService
	windowService  *services.WindowService
	momentService  *services.MomentService
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(
	hub *services.Hub,
	profileService *services.ProfileService,
	windowService *services.WindowService,
	momentService *services.MomentService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		profileService: profileService,
		windowService:  windowService,
		momentService:  momentService,
	}
}

// clientMessage is what connected clients may send
type clientMessage struct {
	Type string `json:"type"`
}

// HandleWebSocket handles GET /ws?token=…
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	userID, err := middleware.ValidateWebSocketToken(token, h.profileService)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID)

	// Sync the gate state on connect so the client can render without
	// an extra round trip.
	h.sendGateStatus(r, userID)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(conn, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "gate_status":
			h.sendGateStatus(r, userID)
		default:
			h.sendError(conn, "Unknown message type")
		}
	}
}

func (h *WebSocketHandler) sendGateStatus(r *http.Request, userID string) {
	canPost, err := h.momentService.CanPostNow(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to compute gate status")
		return
	}

	event := services.Event{
		Type: "gate_status",
		Data: map[string]interface{}{
			"can_post": canPost,
			"open":     h.windowService.Open(),
			"next":     h.windowService.Next(),
		},
	}
	if err := h.hub.SendToUser(userID, event); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send gate status")
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, message string) {
	event := services.Event{
		Type: "error",
		Data: map[string]interface{}{"message": message},
	}
	data, _ := json.Marshal(event)
	conn.WriteMessage(websocket.TextMessage, data)
}
