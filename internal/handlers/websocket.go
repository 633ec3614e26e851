package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"playdate-backend/internal/auth"
	"playdate-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients send no Origin
	},
}

// WebSocketHandler handles WebSocket connections used for in-app delivery
// of notifications
type WebSocketHandler struct {
	hub      *services.WSHub
	resolver auth.Resolver
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, resolver auth.Resolver) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		resolver: resolver,
	}
}

// HandleWebSocket handles GET /ws?token=
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.resolver.ResolveIdentity(r.Context(), token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(userID, "Invalid message format")
			continue
		}

		h.handleMessage(userID, msg)
	}
}

// handleMessage processes incoming WebSocket messages. Clients only keep
// the connection alive; everything else arrives over HTTP.
func (h *WebSocketHandler) handleMessage(userID string, msg services.WSMessage) {
	switch msg.Type {
	case "ping":
		pong := services.WSMessage{
			Type:      "pong",
			Timestamp: time.Now().UnixMilli(),
		}
		if err := h.hub.SendToUser(userID, pong); err != nil {
			log.Debug().Err(err).Str("user_id", userID).Msg("Failed to send pong")
		}
	default:
		h.sendError(userID, "Unknown message type")
	}
}

// sendError sends an error message to the user's connection. Writes go
// through the hub so they never interleave with notifications.
func (h *WebSocketHandler) sendError(userID, message string) {
	msg := services.WSMessage{
		Type:    "error",
		Message: message,
	}
	if err := h.hub.SendToUser(userID, msg); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Failed to send WebSocket error")
	}
}
