package handlers

import (
	"net/http"

	"playdate-backend/internal/middleware"
	"playdate-backend/internal/models"
	"playdate-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// MatchRequestHandler handles match request HTTP requests
type MatchRequestHandler struct {
	matches *services.MatchRequestService
	dogs    *services.DogService
}

// NewMatchRequestHandler creates a new match request handler
func NewMatchRequestHandler(matches *services.MatchRequestService, dogs *services.DogService) *MatchRequestHandler {
	return &MatchRequestHandler{
		matches: matches,
		dogs:    dogs,
	}
}

// Send handles POST /matchRequest/send
func (h *MatchRequestHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req services.CreateMatchRequestInput
	if !decodeBody(w, r, &req) {
		return
	}
	req.FromUserID = middleware.GetUserID(r.Context())

	created, err := h.matches.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to send match request")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

// UpdateStatusRequest represents the request body for answering a request
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles PUT /matchRequest/{id}/status
func (h *MatchRequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.matches.UpdateStatus(
		r.Context(),
		chi.URLParam(r, "id"),
		models.MatchStatus(req.Status),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update match request")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// List handles GET /matchRequest
func (h *MatchRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.matches.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to list match requests")
		return
	}
	respondJSON(w, http.StatusOK, reqs)
}

// ListForDog handles GET /matchRequest/{dogId}?type=incoming|outgoing|accepted
func (h *MatchRequestHandler) ListForDog(w http.ResponseWriter, r *http.Request) {
	dogID := chi.URLParam(r, "dogId")
	if !authorizeDog(w, r, h.dogs, dogID) {
		return
	}

	reqs, err := h.matches.ListForDog(r.Context(), dogID, models.MatchDirection(r.URL.Query().Get("type")))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list match requests")
		return
	}
	respondJSON(w, http.StatusOK, reqs)
}

// authorizeDog checks the caller owns dogID. It writes the error response
// itself and reports whether the handler may continue.
func authorizeDog(w http.ResponseWriter, r *http.Request, dogs *services.DogService, dogID string) bool {
	owner, err := dogs.Owner(r.Context(), dogID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to look up dog")
		return false
	}
	if owner != middleware.GetUserID(r.Context()) {
		respondError(w, services.ErrNotDogOwner.Error(), http.StatusForbidden)
		return false
	}
	return true
}
