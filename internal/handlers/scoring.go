package handlers

import (
	"net/http"

	"playdate-backend/internal/models"
	"playdate-backend/internal/services"
)

// ScoringHandler handles match scoring requests
type ScoringHandler struct {
	ranking *services.RankingService
	dogs    *services.DogService
}

// NewScoringHandler creates a new scoring handler
func NewScoringHandler(ranking *services.RankingService, dogs *services.DogService) *ScoringHandler {
	return &ScoringHandler{ranking: ranking, dogs: dogs}
}

// ScoreRequest represents the request body for ranking candidates
type ScoreRequest struct {
	CurrentDogID   string                 `json:"currentDogId" validate:"required"`
	FilteredDogIDs []string               `json:"filteredDogIds"`
	SeenDogIDs     []string               `json:"seenDogIds"`
	UserLocation   *models.Coordinate     `json:"userLocation"`
	Filters        *models.FilterSettings `json:"filters"`
}

// Score handles POST /matchScoring/score
func (h *ScoringHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !authorizeDog(w, r, h.dogs, req.CurrentDogID) {
		return
	}

	ranked, err := h.ranking.Rank(r.Context(), services.RankRequest{
		RequesterDogID:  req.CurrentDogID,
		CandidateDogIDs: req.FilteredDogIDs,
		SeenDogIDs:      req.SeenDogIDs,
		Location:        req.UserLocation,
		Filters:         req.Filters,
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to score matches")
		return
	}

	respondJSON(w, http.StatusOK, ranked)
}
