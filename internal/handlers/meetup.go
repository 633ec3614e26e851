package handlers

import (
	"net/http"

	"playdate-backend/internal/middleware"
	"playdate-backend/internal/models"
	"playdate-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// MeetupHandler handles meet-up HTTP requests
type MeetupHandler struct {
	meetups *services.MeetupService
}

// NewMeetupHandler creates a new meetup handler
func NewMeetupHandler(meetups *services.MeetupService) *MeetupHandler {
	return &MeetupHandler{meetups: meetups}
}

// Create handles POST /meetups/{chatRoomId}/create
func (h *MeetupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateMeetupInput
	if !decodeBody(w, r, &req) {
		return
	}
	req.SenderID = middleware.GetUserID(r.Context())

	m, err := h.meetups.Create(r.Context(), chi.URLParam(r, "chatRoomId"), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create meetup")
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

// UpdateStatus handles PUT /meetups/{chatRoomId}/{meetupId}/status
func (h *MeetupHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	m, err := h.meetups.UpdateStatus(
		r.Context(),
		chi.URLParam(r, "chatRoomId"),
		chi.URLParam(r, "meetupId"),
		models.MeetupStatus(req.Status),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update meetup status")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// Cancel handles DELETE /meetups/{chatRoomId}/{meetupId}
func (h *MeetupHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	m, err := h.meetups.Cancel(
		r.Context(),
		chi.URLParam(r, "chatRoomId"),
		chi.URLParam(r, "meetupId"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		respondServiceError(w, r, err, "Failed to cancel meetup")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// Complete handles PUT /meetups/{chatRoomId}/{meetupId}/complete
func (h *MeetupHandler) Complete(w http.ResponseWriter, r *http.Request) {
	m, err := h.meetups.Complete(
		r.Context(),
		chi.URLParam(r, "chatRoomId"),
		chi.URLParam(r, "meetupId"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		respondServiceError(w, r, err, "Failed to complete meetup")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// ListByUser handles GET /meetups/user/{userId}?type=&status=
func (h *MeetupHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID != middleware.GetUserID(r.Context()) {
		respondError(w, "You can only list your own meet-ups", http.StatusForbidden)
		return
	}

	q := r.URL.Query()
	list, err := h.meetups.ListByUser(
		r.Context(),
		userID,
		models.MeetupDirection(q.Get("type")),
		models.MeetupStatus(q.Get("status")),
	)
	if err != nil {
		respondServiceError(w, r, err, "Failed to list meetups")
		return
	}
	respondJSON(w, http.StatusOK, list)
}
