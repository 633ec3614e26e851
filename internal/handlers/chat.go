package handlers

import (
	"net/http"

	"playdate-backend/internal/middleware"
	"playdate-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ChatHandler handles chat HTTP requests
type ChatHandler struct {
	chats *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

// CreateRoomRequest represents the request body for opening a chat room
type CreateRoomRequest struct {
	FromDogID string `json:"fromDogId" validate:"required"`
	ToUserID  string `json:"toUserId" validate:"required"`
	ToDogID   string `json:"toDogId" validate:"required"`
}

// CreateRoom handles POST /chat/createRoom
func (h *ChatHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if !decodeBody(w, r, &req) {
		return
	}

	room, err := h.chats.CreateRoom(r.Context(), services.CreateRoomInput{
		FromUserID: middleware.GetUserID(r.Context()),
		FromDogID:  req.FromDogID,
		ToUserID:   req.ToUserID,
		ToDogID:    req.ToDogID,
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to create chat room")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"chatRoomId": room.ID})
}

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	ChatRoomID string `json:"chatRoomId" validate:"required"`
	services.SendMessageInput
}

// SendMessage handles POST /chat/sendMessage
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.SenderID = middleware.GetUserID(r.Context())

	msg, err := h.chats.SendMessage(r.Context(), req.ChatRoomID, req.SendMessageInput)
	if err != nil {
		respondServiceError(w, r, err, "Failed to send message")
		return
	}

	respondJSON(w, http.StatusCreated, msg)
}

// GetMessages handles GET /chat/{chatRoomId}/messages
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.chats.GetMessages(r.Context(), chi.URLParam(r, "chatRoomId"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get messages")
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}

// GetRooms handles GET /chat/rooms
func (h *ChatHandler) GetRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.chats.GetRoomsForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get chat rooms")
		return
	}
	respondJSON(w, http.StatusOK, rooms)
}

// GetRoom handles GET /chat/rooms/{chatRoomId}
func (h *ChatHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.chats.GetRoom(r.Context(), chi.URLParam(r, "chatRoomId"), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get chat room")
		return
	}
	respondJSON(w, http.StatusOK, room)
}
