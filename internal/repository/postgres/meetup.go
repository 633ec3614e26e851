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

const meetupColumns = `id, chat_room_id, sender_id, sender_dog_id, receiver_id, receiver_dog_id,
	proposed_time, location_name, latitude, longitude, message, status, created_at, updated_at`

// MeetupRepository handles database operations for meet-ups
type MeetupRepository struct {
	db *pgxpool.Pool
}

// NewMeetupRepository creates a new meetup repository
func NewMeetupRepository(db *pgxpool.Pool) *MeetupRepository {
	return &MeetupRepository{db: db}
}

// Create creates a new meet-up
func (r *MeetupRepository) Create(ctx context.Context, m *models.MeetupRequest) error {
	query := `
		INSERT INTO meetups (` + meetupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		m.ID, m.ChatRoomID, m.SenderID, m.SenderDogID, m.ReceiverID, m.ReceiverDogID,
		m.ProposedTime, m.LocationName, m.LocationCoordinate.Latitude, m.LocationCoordinate.Longitude,
		m.Message, m.Status, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create meetup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("meetup %s: %w", m.ID, repository.ErrAlreadyExists)
	}
	return nil
}

func scanMeetup(row pgx.Row) (*models.MeetupRequest, error) {
	var m models.MeetupRequest
	err := row.Scan(
		&m.ID, &m.ChatRoomID, &m.SenderID, &m.SenderDogID, &m.ReceiverID, &m.ReceiverDogID,
		&m.ProposedTime, &m.LocationName, &m.LocationCoordinate.Latitude, &m.LocationCoordinate.Longitude,
		&m.Message, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID retrieves a meet-up by ID
func (r *MeetupRepository) GetByID(ctx context.Context, id string) (*models.MeetupRequest, error) {
	query := `SELECT ` + meetupColumns + ` FROM meetups WHERE id = $1`
	m, err := scanMeetup(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("meetup %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get meetup: %w", err)
	}
	return m, nil
}

// UpdateStatus moves a meet-up from one status to another in a single statement
func (r *MeetupRepository) UpdateStatus(ctx context.Context, id string, from, to models.MeetupStatus, at time.Time) error {
	query := `UPDATE meetups SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	tag, err := r.db.Exec(ctx, query, to, at, id, from)
	if err != nil {
		return fmt.Errorf("failed to update meetup status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("meetup %s: %w", id, repository.ErrStaleStatus)
}

// ListByUser returns meet-ups where the user is sender or receiver
func (r *MeetupRepository) ListByUser(ctx context.Context, userID string) ([]models.MeetupRequest, error) {
	query := `
		SELECT ` + meetupColumns + `
		FROM meetups
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY proposed_time ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetups: %w", err)
	}
	defer rows.Close()

	var out []models.MeetupRequest
	for rows.Next() {
		m, err := scanMeetup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meetup: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meetups: %w", err)
	}
	return out, nil
}
