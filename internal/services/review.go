package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"playdate-backend/internal/lock"
	"playdate-backend/internal/models"
	"playdate-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ReviewService gates reviews on completed meet-ups and owns the
// denormalized rating stats of users
type ReviewService struct {
	reviews repository.ReviewRepository
	meetups repository.MeetupRepository
	users   repository.UserRepository
	dogs    repository.DogRepository
	locker  lock.Locker
	lockTTL time.Duration
	now     func() time.Time
}

// NewReviewService creates a new review service
func NewReviewService(
	reviews repository.ReviewRepository,
	meetups repository.MeetupRepository,
	users repository.UserRepository,
	dogs repository.DogRepository,
	locker lock.Locker,
	lockTTL time.Duration,
) *ReviewService {
	return &ReviewService{
		reviews: reviews,
		meetups: meetups,
		users:   users,
		dogs:    dogs,
		locker:  locker,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

// SubmitReviewInput represents a review of the other meet-up participant
type SubmitReviewInput struct {
	MeetupID   string `json:"meetupId" validate:"required"`
	ReviewerID string `json:"reviewerId"`
	RevieweeID string `json:"revieweeId" validate:"required"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=1000"`
}

func reviewID(meetupID, reviewerID string) string {
	return "review_" + meetupID + "_" + reviewerID
}

// Submit stores one review per reviewer and completed meet-up, then
// recomputes the reviewee's rating stats
func (s *ReviewService) Submit(ctx context.Context, in SubmitReviewInput) (*models.Review, error) {
	if in.MeetupID == "" || in.ReviewerID == "" || in.RevieweeID == "" {
		return nil, Validation("meetupId, reviewerId and revieweeId are required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, Validation("rating must be between 1 and 5")
	}
	if in.ReviewerID == in.RevieweeID {
		return nil, ErrSelfReview
	}

	m, err := s.meetups.GetByID(ctx, in.MeetupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeetupNotFound
		}
		return nil, fmt.Errorf("failed to get meetup: %w", err)
	}
	if !m.IsParticipant(in.ReviewerID) || m.OtherUserID(in.ReviewerID) != in.RevieweeID {
		return nil, ErrForbidden
	}
	if m.Status != models.MeetupStatusCompleted {
		return nil, ErrMeetupNotCompleted
	}

	release, err := s.locker.Acquire(ctx, "review:"+in.MeetupID+":"+in.ReviewerID, s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return nil, ErrRequestInFlight
		}
		return nil, fmt.Errorf("failed to acquire review lock: %w", err)
	}
	defer release()

	exists, err := s.reviews.ExistsForReviewer(ctx, in.MeetupID, in.ReviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing reviews: %w", err)
	}
	if exists {
		return nil, ErrDuplicateReview
	}

	review := &models.Review{
		ID:         reviewID(in.MeetupID, in.ReviewerID),
		MeetupID:   in.MeetupID,
		ReviewerID: in.ReviewerID,
		RevieweeID: in.RevieweeID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		CreatedAt:  s.now(),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	log.Info().
		Str("review_id", review.ID).
		Str("meetup_id", review.MeetupID).
		Int("rating", review.Rating).
		Msg("Review submitted")

	if _, err := s.recomputeStats(ctx, in.RevieweeID); err != nil {
		log.Error().Err(err).Str("user_id", in.RevieweeID).Msg("Failed to update review stats")
	}

	return review, nil
}

// recomputeStats averages every rating the user has received
func (s *ReviewService) recomputeStats(ctx context.Context, userID string) (models.ReviewStats, error) {
	received, err := s.reviews.ListByReviewee(ctx, userID)
	if err != nil {
		return models.ReviewStats{}, fmt.Errorf("failed to list reviews: %w", err)
	}

	stats := AverageRating(received)
	if err := s.users.UpdateReviewStats(ctx, userID, stats); err != nil {
		return models.ReviewStats{}, fmt.Errorf("failed to write review stats: %w", err)
	}
	return stats, nil
}

// AverageRating is the mean rating rounded to two decimals
func AverageRating(reviews []models.Review) models.ReviewStats {
	if len(reviews) == 0 {
		return models.ReviewStats{}
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	avg := float64(total) / float64(len(reviews))
	return models.ReviewStats{
		AverageRating: math.Round(avg*100) / 100,
		ReviewCount:   len(reviews),
	}
}

// Stats returns the stored rating summary of a user
func (s *ReviewService) Stats(ctx context.Context, userID string) (*models.ReviewStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &models.ReviewStats{
		AverageRating: user.AverageRating,
		ReviewCount:   user.ReviewCount,
	}, nil
}

// ListForUser returns the reviews a user has received, newest first
func (s *ReviewService) ListForUser(ctx context.Context, userID string) ([]models.Review, error) {
	reviews, err := s.reviews.ListByReviewee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

// ListCardsForUser returns received reviews with the dogs of each meet-up.
// Missing meet-ups or dogs leave the dog fields empty.
func (s *ReviewService) ListCardsForUser(ctx context.Context, userID string) ([]models.ReviewCard, error) {
	reviews, err := s.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cards := make([]models.ReviewCard, len(reviews))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryLookupLimit)
	for i := range reviews {
		i := i
		cards[i].Review = reviews[i]
		g.Go(func() error {
			s.fillCard(gctx, &cards[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *ReviewService) fillCard(ctx context.Context, card *models.ReviewCard) {
	m, err := s.meetups.GetByID(ctx, card.MeetupID)
	if err != nil {
		log.Warn().Err(err).Str("meetup_id", card.MeetupID).Msg("Review card meetup lookup failed")
		return
	}

	reviewerDogID, revieweeDogID := m.SenderDogID, m.ReceiverDogID
	if card.ReviewerID == m.ReceiverID {
		reviewerDogID, revieweeDogID = m.ReceiverDogID, m.SenderDogID
	}

	if dog, err := s.dogs.GetByID(ctx, reviewerDogID); err == nil {
		card.ReviewerDogName = dog.Name
		card.ReviewerDogImage = dog.FirstImage()
	}
	if dog, err := s.dogs.GetByID(ctx, revieweeDogID); err == nil {
		card.RevieweeDogName = dog.Name
		card.RevieweeDogImage = dog.FirstImage()
	}
}
