package handlers

import (
	"net/http"

	"playdate-backend/internal/middleware"
	"playdate-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ReviewHandler handles review HTTP requests
type ReviewHandler struct {
	reviews *services.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// Submit handles POST /reviews/submit
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitReviewInput
	if !decodeBody(w, r, &req) {
		return
	}
	req.ReviewerID = middleware.GetUserID(r.Context())

	review, err := h.reviews.Submit(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to submit review")
		return
	}
	respondJSON(w, http.StatusCreated, review)
}

// Average handles GET /reviews/average/{userId}
func (h *ReviewHandler) Average(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reviews.Stats(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get review stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// ListForUser handles GET /reviews/user/{userId}
func (h *ReviewHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list reviews")
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

// ListCardsForUser handles GET /reviews/user/{userId}/enhanced
func (h *ReviewHandler) ListCardsForUser(w http.ResponseWriter, r *http.Request) {
	cards, err := h.reviews.ListCardsForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to list reviews")
		return
	}
	respondJSON(w, http.StatusOK, cards)
}
