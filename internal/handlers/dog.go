package handlers

import (
	"net/http"

	"playdate-backend/internal/middleware"
	"playdate-backend/internal/models"
	"playdate-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// DogHandler handles dog profile HTTP requests
type DogHandler struct {
	dogs *services.DogService
}

// NewDogHandler creates a new dog handler
func NewDogHandler(dogs *services.DogService) *DogHandler {
	return &DogHandler{dogs: dogs}
}

// UpdateVaccinations handles PUT /dogs/{dogId}/vaccinations
func (h *DogHandler) UpdateVaccinations(w http.ResponseWriter, r *http.Request) {
	var req services.VaccinationUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	status, err := h.dogs.UpdateVaccinations(
		r.Context(),
		chi.URLParam(r, "dogId"),
		middleware.GetUserID(r.Context()),
		req,
	)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update vaccinations")
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// SwitchModeRequest represents the request body for a mode switch
type SwitchModeRequest struct {
	Mode string `json:"mode" validate:"required"`
}

// SwitchMode handles POST /dogs/{dogId}/modeSwitch
func (h *DogHandler) SwitchMode(w http.ResponseWriter, r *http.Request) {
	var req SwitchModeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	dog, err := h.dogs.SwitchMode(
		r.Context(),
		chi.URLParam(r, "dogId"),
		middleware.GetUserID(r.Context()),
		models.DogMode(req.Mode),
	)
	if err != nil {
		respondServiceError(w, r, err, "Failed to switch mode")
		return
	}

	log.Info().
		Str("dog_id", dog.ID).
		Str("mode", string(dog.Mode)).
		Msg("Dog mode switched")

	respondJSON(w, http.StatusOK, dog)
}
