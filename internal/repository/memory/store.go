// Package memory keeps every collection in process. It backs the tests and
// the "memory" storage driver used for local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"playdate-backend/internal/models"
	"playdate-backend/internal/repository"
)

// NewStore builds an empty in-memory store
func NewStore() *repository.Store {
	return &repository.Store{
		Dogs:          NewDogRepo(),
		Users:         NewUserRepo(),
		MatchRequests: NewMatchRequestRepo(),
		Chats:         NewChatRepo(),
		Meetups:       NewMeetupRepo(),
		Reviews:       NewReviewRepo(),
	}
}

type dogRepo struct {
	mu   sync.RWMutex
	byID map[string]models.Dog
}

// NewDogRepo creates an empty in-memory dog repository
func NewDogRepo() repository.DogRepository {
	return &dogRepo{byID: make(map[string]models.Dog)}
}

// Create stores a new dog
func (r *dogRepo) Create(ctx context.Context, dog *models.Dog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[dog.ID]; exists {
		return fmt.Errorf("dog %s: %w", dog.ID, repository.ErrAlreadyExists)
	}
	r.byID[dog.ID] = *dog
	return nil
}

// GetByID retrieves a dog by ID
func (r *dogRepo) GetByID(ctx context.Context, id string) (*models.Dog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dog, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("dog %s: %w", id, repository.ErrNotFound)
	}
	return &dog, nil
}

// GetByIDs returns the dogs that exist, in the order requested
func (r *dogRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Dog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Dog, 0, len(ids))
	for _, id := range ids {
		if dog, ok := r.byID[id]; ok {
			out = append(out, dog)
		}
	}
	return out, nil
}

// UpdateVaccinations sets the core vaccination dates that are not nil
func (r *dogRepo) UpdateVaccinations(ctx context.Context, id string, first, second *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dog, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("dog %s: %w", id, repository.ErrNotFound)
	}
	if first != nil {
		dog.CoreVaccination1Date = first
	}
	if second != nil {
		dog.CoreVaccination2Date = second
	}
	r.byID[id] = dog
	return nil
}

// UpdateMode switches a dog between puppy and social mode
func (r *dogRepo) UpdateMode(ctx context.Context, id string, mode models.DogMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dog, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("dog %s: %w", id, repository.ErrNotFound)
	}
	dog.Mode = mode
	r.byID[id] = dog
	return nil
}

type userRepo struct {
	mu   sync.RWMutex
	byID map[string]models.User
}

// NewUserRepo creates an empty in-memory user repository
func NewUserRepo() repository.UserRepository {
	return &userRepo{byID: make(map[string]models.User)}
}

// Create stores a new user
func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[user.ID]; exists {
		return fmt.Errorf("user %s: %w", user.ID, repository.ErrAlreadyExists)
	}
	r.byID[user.ID] = *user
	return nil
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	return &user, nil
}

// UpdatePushToken sets or clears the user's device token
func (r *userRepo) UpdatePushToken(ctx context.Context, id string, pushToken *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	user.PushToken = pushToken
	r.byID[id] = user
	return nil
}

// UpdateReviewStats writes the user's rating summary
func (r *userRepo) UpdateReviewStats(ctx context.Context, id string, stats models.ReviewStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	user.AverageRating = stats.AverageRating
	user.ReviewCount = stats.ReviewCount
	r.byID[id] = user
	return nil
}

type matchRequestRepo struct {
	mu   sync.RWMutex
	byID map[string]models.MatchRequest
}

// NewMatchRequestRepo creates an empty in-memory match request repository
func NewMatchRequestRepo() repository.MatchRequestRepository {
	return &matchRequestRepo{byID: make(map[string]models.MatchRequest)}
}

// Create stores a new match request
func (r *matchRequestRepo) Create(ctx context.Context, req *models.MatchRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[req.ID]; exists {
		return fmt.Errorf("match request %s: %w", req.ID, repository.ErrAlreadyExists)
	}
	r.byID[req.ID] = *req
	return nil
}

// GetByID retrieves a match request by ID
func (r *matchRequestRepo) GetByID(ctx context.Context, id string) (*models.MatchRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("match request %s: %w", id, repository.ErrNotFound)
	}
	return &req, nil
}

// List returns every match request, newest first
func (r *matchRequestRepo) List(ctx context.Context) ([]models.MatchRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(models.MatchRequest) bool { return true }), nil
}

// UpdateStatus moves a request from one status to another
func (r *matchRequestRepo) UpdateStatus(ctx context.Context, id string, from, to models.MatchStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("match request %s: %w", id, repository.ErrNotFound)
	}
	if req.Status != from {
		return fmt.Errorf("match request %s: %w", id, repository.ErrStaleStatus)
	}
	req.Status = to
	req.UpdatedAt = &at
	r.byID[id] = req
	return nil
}

// ExistsFromUserToDog reports whether the user already sent a request to the dog
func (r *matchRequestRepo) ExistsFromUserToDog(ctx context.Context, fromUserID, toDogID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, req := range r.byID {
		if req.FromUserID == fromUserID && req.ToDogID == toDogID {
			return true, nil
		}
	}
	return false, nil
}

// ListByDog returns requests on either side of the dog, optionally limited to statuses
func (r *matchRequestRepo) ListByDog(ctx context.Context, dogID string, statuses ...models.MatchStatus) ([]models.MatchRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.filter(func(req models.MatchRequest) bool {
		if req.FromDogID != dogID && req.ToDogID != dogID {
			return false
		}
		for _, s := range statuses {
			if req.Status == s {
				return true
			}
		}
		return false
	}), nil
}

// filter must be called with the lock held; results are newest first
func (r *matchRequestRepo) filter(keep func(models.MatchRequest) bool) []models.MatchRequest {
	out := make([]models.MatchRequest, 0)
	for _, req := range r.byID {
		if keep(req) {
			out = append(out, req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
