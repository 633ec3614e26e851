package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playdate-backend/internal/models"
	"playdate-backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const matchRequestColumns = `id, from_user_id, from_dog_id, to_user_id, to_dog_id, status, message, created_at, updated_at`

// MatchRequestRepository handles database operations for match requests
type MatchRequestRepository struct {
	db *pgxpool.Pool
}

// NewMatchRequestRepository creates a new match request repository
func NewMatchRequestRepository(db *pgxpool.Pool) *MatchRequestRepository {
	return &MatchRequestRepository{db: db}
}

// Create creates a new match request
func (r *MatchRequestRepository) Create(ctx context.Context, req *models.MatchRequest) error {
	query := `
		INSERT INTO match_requests (` + matchRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		req.ID, req.FromUserID, req.FromDogID, req.ToUserID, req.ToDogID,
		req.Status, req.Message, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match request %s: %w", req.ID, repository.ErrAlreadyExists)
	}
	return nil
}

func scanMatchRequest(row pgx.Row) (*models.MatchRequest, error) {
	var req models.MatchRequest
	err := row.Scan(
		&req.ID, &req.FromUserID, &req.FromDogID, &req.ToUserID, &req.ToDogID,
		&req.Status, &req.Message, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *MatchRequestRepository) list(ctx context.Context, query string, args ...any) ([]models.MatchRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query match requests: %w", err)
	}
	defer rows.Close()

	var out []models.MatchRequest
	for rows.Next() {
		req, err := scanMatchRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match request: %w", err)
		}
		out = append(out, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate match requests: %w", err)
	}
	return out, nil
}

// GetByID retrieves a match request by ID
func (r *MatchRequestRepository) GetByID(ctx context.Context, id string) (*models.MatchRequest, error) {
	query := `SELECT ` + matchRequestColumns + ` FROM match_requests WHERE id = $1`
	req, err := scanMatchRequest(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("match request %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get match request: %w", err)
	}
	return req, nil
}

// List returns every match request, newest first
func (r *MatchRequestRepository) List(ctx context.Context) ([]models.MatchRequest, error) {
	return r.list(ctx, `SELECT `+matchRequestColumns+` FROM match_requests ORDER BY created_at DESC`)
}

// UpdateStatus moves a request from one status to another in a single statement
func (r *MatchRequestRepository) UpdateStatus(ctx context.Context, id string, from, to models.MatchStatus, at time.Time) error {
	query := `UPDATE match_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	tag, err := r.db.Exec(ctx, query, to, at, id, from)
	if err != nil {
		return fmt.Errorf("failed to update match request status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// distinguish a missing row from a lost race
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("match request %s: %w", id, repository.ErrStaleStatus)
}

// ExistsFromUserToDog checks whether the user already asked to match with the dog
func (r *MatchRequestRepository) ExistsFromUserToDog(ctx context.Context, fromUserID, toDogID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM match_requests WHERE from_user_id = $1 AND to_dog_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, fromUserID, toDogID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check match request existence: %w", err)
	}
	return exists, nil
}

// ListByDog returns requests on either side of the dog with one of statuses
func (r *MatchRequestRepository) ListByDog(ctx context.Context, dogID string, statuses ...models.MatchStatus) ([]models.MatchRequest, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	query := `
		SELECT ` + matchRequestColumns + `
		FROM match_requests
		WHERE (from_dog_id = $1 OR to_dog_id = $1) AND status = ANY($2)
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, dogID, values)
}
