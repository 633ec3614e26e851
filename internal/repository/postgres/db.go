package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"playdate-backend/internal/models"
	"playdate-backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schema string

// Connect opens a pool, pings it and applies the schema
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info().Msg("Database connection established")
	return db, nil
}

// NewStore builds every repository over one pool
func NewStore(db *pgxpool.Pool) *repository.Store {
	return &repository.Store{
		Dogs:          NewDogRepository(db),
		Users:         NewUserRepository(db),
		MatchRequests: NewMatchRequestRepository(db),
		Chats:         NewChatRepository(db),
		Meetups:       NewMeetupRepository(db),
		Reviews:       NewReviewRepository(db),
	}
}

func toCoordinate(lat, lon *float64) *models.Coordinate {
	if lat == nil || lon == nil {
		return nil
	}
	return &models.Coordinate{Latitude: *lat, Longitude: *lon}
}

func fromCoordinate(c *models.Coordinate) (lat, lon *float64) {
	if c == nil {
		return nil, nil
	}
	return &c.Latitude, &c.Longitude
}
