package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playdate-backend/internal/models"
	"playdate-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// DogService handles dog ownership lookups and puppy/social mode switching
type DogService struct {
	dogs repository.DogRepository
}

// NewDogService creates a new dog service
func NewDogService(dogs repository.DogRepository) *DogService {
	return &DogService{dogs: dogs}
}

// Owner returns the id of the user who owns the dog
func (s *DogService) Owner(ctx context.Context, dogID string) (string, error) {
	dog, err := s.get(ctx, dogID)
	if err != nil {
		return "", err
	}
	return dog.OwnerID, nil
}

func (s *DogService) get(ctx context.Context, dogID string) (*models.Dog, error) {
	dog, err := s.dogs.GetByID(ctx, dogID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDogNotFound
		}
		return nil, fmt.Errorf("failed to get dog: %w", err)
	}
	return dog, nil
}

func (s *DogService) getOwned(ctx context.Context, dogID, userID string) (*models.Dog, error) {
	dog, err := s.get(ctx, dogID)
	if err != nil {
		return nil, err
	}
	if dog.OwnerID != userID {
		return nil, ErrNotDogOwner
	}
	return dog, nil
}

// VaccinationUpdate carries the core vaccination dates to set. A nil date
// keeps the stored value.
type VaccinationUpdate struct {
	CoreVaccination1Date *time.Time `json:"coreVaccination1Date"`
	CoreVaccination2Date *time.Time `json:"coreVaccination2Date"`
}

// DogModeStatus reports whether a dog may leave puppy mode
type DogModeStatus struct {
	Dog               *models.Dog `json:"dog"`
	ReadyToSwitchMode bool        `json:"readyToSwitchMode"`
	CanSwitchToSocial bool        `json:"canSwitchToSocial"`
}

func modeStatus(dog *models.Dog) *DogModeStatus {
	vaccinated := dog.HasCoreVaccinations()
	return &DogModeStatus{
		Dog:               dog,
		ReadyToSwitchMode: dog.Mode == models.DogModePuppy && vaccinated,
		CanSwitchToSocial: vaccinated,
	}
}

// UpdateVaccinations records core vaccination dates
func (s *DogService) UpdateVaccinations(ctx context.Context, dogID, userID string, upd VaccinationUpdate) (*DogModeStatus, error) {
	if upd.CoreVaccination1Date == nil && upd.CoreVaccination2Date == nil {
		return nil, Validation("at least one vaccination date is required")
	}
	if _, err := s.getOwned(ctx, dogID, userID); err != nil {
		return nil, err
	}

	if err := s.dogs.UpdateVaccinations(ctx, dogID, upd.CoreVaccination1Date, upd.CoreVaccination2Date); err != nil {
		return nil, fmt.Errorf("failed to update vaccinations: %w", err)
	}

	dog, err := s.get(ctx, dogID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("dog_id", dogID).
		Bool("vaccinated", dog.HasCoreVaccinations()).
		Msg("Vaccinations updated")

	return modeStatus(dog), nil
}

// SwitchMode moves a dog between puppy and social mode. Social mode needs
// both core vaccination dates.
func (s *DogService) SwitchMode(ctx context.Context, dogID, userID string, mode models.DogMode) (*models.Dog, error) {
	if !mode.Valid() {
		return nil, Validation("mode must be %q or %q", models.DogModePuppy, models.DogModeSocial)
	}
	dog, err := s.getOwned(ctx, dogID, userID)
	if err != nil {
		return nil, err
	}
	if dog.Mode == mode {
		return nil, ErrSameMode
	}
	if mode == models.DogModeSocial && !dog.HasCoreVaccinations() {
		return nil, ErrVaccinationsIncomplete
	}

	if err := s.dogs.UpdateMode(ctx, dogID, mode); err != nil {
		return nil, fmt.Errorf("failed to update dog mode: %w", err)
	}
	dog.Mode = mode

	log.Info().
		Str("dog_id", dogID).
		Str("mode", string(mode)).
		Msg("Dog mode switched")

	return dog, nil
}
