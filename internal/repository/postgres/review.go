package postgres

import (
	"context"
	"fmt"

	"playdate-backend/internal/models"
	"playdate-backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository handles database operations for reviews
type ReviewRepository struct {
	db *pgxpool.Pool
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts the review; a second review for the same meet-up and
// reviewer hits the unique constraint and is reported as ErrAlreadyExists
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (id, meetup_id, reviewer_id, reviewee_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		review.ID, review.MeetupID, review.ReviewerID, review.RevieweeID,
		review.Rating, review.Comment, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("review %s: %w", review.ID, repository.ErrAlreadyExists)
	}
	return nil
}

// ListByReviewee returns every review received by the user, newest first
func (r *ReviewRepository) ListByReviewee(ctx context.Context, userID string) ([]models.Review, error) {
	query := `
		SELECT id, meetup_id, reviewer_id, reviewee_id, rating, comment, created_at
		FROM reviews
		WHERE reviewee_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var out []models.Review
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.MeetupID, &rv.ReviewerID, &rv.RevieweeID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return out, nil
}

// ExistsForReviewer checks whether the reviewer already reviewed the meet-up
func (r *ReviewRepository) ExistsForReviewer(ctx context.Context, meetupID, reviewerID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE meetup_id = $1 AND reviewer_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, meetupID, reviewerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return exists, nil
}
