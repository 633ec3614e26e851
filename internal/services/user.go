package services

import (
	"context"
	"errors"
	"fmt"

	"playdate-backend/internal/models"
	"playdate-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// UserService handles user-related business logic
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// Get returns a user by id
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdatePushToken stores the device token notifications are sent to. An
// empty token clears it.
func (s *UserService) UpdatePushToken(ctx context.Context, userID, token string) error {
	var ptr *string
	if token != "" {
		ptr = &token
	}
	if err := s.users.UpdatePushToken(ctx, userID, ptr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update push token: %w", err)
	}

	log.Info().Str("user_id", userID).Bool("cleared", ptr == nil).Msg("Push token updated")
	return nil
}
