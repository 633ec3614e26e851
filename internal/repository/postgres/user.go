package postgres

import (
	"context"
	"errors"
	"fmt"

	"playdate-backend/internal/models"
	"playdate-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	lat, lon := fromCoordinate(user.Coordinate)
	query := `
		INSERT INTO users (id, name, image_url, primary_dog_id, push_token, latitude, longitude, average_rating, review_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Name, user.ImageURL, user.PrimaryDogID, user.PushToken,
		lat, lon, user.AverageRating, user.ReviewCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID, repository.ErrAlreadyExists)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, image_url, primary_dog_id, push_token, latitude, longitude, average_rating, review_count
		FROM users
		WHERE id = $1
	`
	var (
		user     models.User
		lat, lon *float64
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.ImageURL, &user.PrimaryDogID, &user.PushToken,
		&lat, &lon, &user.AverageRating, &user.ReviewCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Coordinate = toCoordinate(lat, lon)
	return &user, nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, id string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, pushToken, id)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// UpdateReviewStats writes the denormalized rating summary
func (r *UserRepository) UpdateReviewStats(ctx context.Context, id string, stats models.ReviewStats) error {
	query := `UPDATE users SET average_rating = $1, review_count = $2 WHERE id = $3`
	tag, err := r.db.Exec(ctx, query, stats.AverageRating, stats.ReviewCount, id)
	if err != nil {
		return fmt.Errorf("failed to update review stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
