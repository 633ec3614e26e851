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

type meetupRepo struct {
	mu   sync.RWMutex
	byID map[string]models.MeetupRequest
}

// NewMeetupRepo creates an empty in-memory meetup repository
func NewMeetupRepo() repository.MeetupRepository {
	return &meetupRepo{byID: make(map[string]models.MeetupRequest)}
}

// Create stores a meetup unless its id is taken
func (r *meetupRepo) Create(ctx context.Context, m *models.MeetupRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[m.ID]; exists {
		return fmt.Errorf("meetup %s: %w", m.ID, repository.ErrAlreadyExists)
	}
	r.byID[m.ID] = *m
	return nil
}

// GetByID retrieves a meetup by ID
func (r *meetupRepo) GetByID(ctx context.Context, id string) (*models.MeetupRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("meetup %s: %w", id, repository.ErrNotFound)
	}
	return &m, nil
}

// UpdateStatus moves a meetup from one status to another
func (r *meetupRepo) UpdateStatus(ctx context.Context, id string, from, to models.MeetupStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("meetup %s: %w", id, repository.ErrNotFound)
	}
	if m.Status != from {
		return fmt.Errorf("meetup %s: %w", id, repository.ErrStaleStatus)
	}
	m.Status = to
	m.UpdatedAt = at
	r.byID[id] = m
	return nil
}

// ListByUser returns meetups the user sent or received, soonest first
func (r *meetupRepo) ListByUser(ctx context.Context, userID string) ([]models.MeetupRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.MeetupRequest, 0)
	for _, m := range r.byID {
		if m.IsParticipant(userID) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ProposedTime.Before(out[j].ProposedTime)
	})
	return out, nil
}

type reviewRepo struct {
	mu   sync.RWMutex
	byID map[string]models.Review
}

// NewReviewRepo creates an empty in-memory review repository
func NewReviewRepo() repository.ReviewRepository {
	return &reviewRepo{byID: make(map[string]models.Review)}
}

// Create stores a review unless its id is taken
func (r *reviewRepo) Create(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[review.ID]; exists {
		return fmt.Errorf("review %s: %w", review.ID, repository.ErrAlreadyExists)
	}
	for _, rv := range r.byID {
		if rv.MeetupID == review.MeetupID && rv.ReviewerID == review.ReviewerID {
			return fmt.Errorf("review %s: %w", review.ID, repository.ErrAlreadyExists)
		}
	}
	r.byID[review.ID] = *review
	return nil
}

// ListByReviewee returns the reviews a user received, newest first
func (r *reviewRepo) ListByReviewee(ctx context.Context, userID string) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Review, 0)
	for _, rv := range r.byID {
		if rv.RevieweeID == userID {
			out = append(out, rv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ExistsForReviewer reports whether the reviewer already reviewed the meetup
func (r *reviewRepo) ExistsForReviewer(ctx context.Context, meetupID, reviewerID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rv := range r.byID {
		if rv.MeetupID == meetupID && rv.ReviewerID == reviewerID {
			return true, nil
		}
	}
	return false, nil
}
