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

const dogColumns = `id, owner_id, name, gender, size, breed, dob, image_urls, mode, is_neutered,
	play_styles, environments, triggers, health_status, latitude, longitude,
	core_vaccination_1_date, core_vaccination_2_date`

// DogRepository handles database operations for dogs
type DogRepository struct {
	db *pgxpool.Pool
}

// NewDogRepository creates a new dog repository
func NewDogRepository(db *pgxpool.Pool) *DogRepository {
	return &DogRepository{db: db}
}

// Create creates a new dog
func (r *DogRepository) Create(ctx context.Context, dog *models.Dog) error {
	lat, lon := fromCoordinate(dog.Coordinate)
	var playStyles, environments, triggers []string
	if dog.Behavior != nil {
		playStyles = dog.Behavior.PlayStyles
		environments = dog.Behavior.Environments
		triggers = dog.Behavior.Triggers
	}
	imageURLs := dog.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}

	query := `
		INSERT INTO dogs (` + dogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		dog.ID, dog.OwnerID, dog.Name, dog.Gender, dog.Size, dog.Breed, dog.DOB, imageURLs,
		dog.Mode, dog.IsNeutered, playStyles, environments, triggers, dog.HealthStatus,
		lat, lon, dog.CoreVaccination1Date, dog.CoreVaccination2Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create dog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dog %s: %w", dog.ID, repository.ErrAlreadyExists)
	}
	return nil
}

func scanDog(row pgx.Row) (*models.Dog, error) {
	var (
		dog                             models.Dog
		playStyles, environments, trigs []string
		lat, lon                        *float64
	)
	err := row.Scan(
		&dog.ID, &dog.OwnerID, &dog.Name, &dog.Gender, &dog.Size, &dog.Breed, &dog.DOB,
		&dog.ImageURLs, &dog.Mode, &dog.IsNeutered, &playStyles, &environments, &trigs,
		&dog.HealthStatus, &lat, &lon, &dog.CoreVaccination1Date, &dog.CoreVaccination2Date,
	)
	if err != nil {
		return nil, err
	}
	if playStyles != nil || environments != nil || trigs != nil {
		dog.Behavior = &models.DogBehavior{
			PlayStyles:   playStyles,
			Environments: environments,
			Triggers:     trigs,
		}
	}
	dog.Coordinate = toCoordinate(lat, lon)
	return &dog, nil
}

// GetByID retrieves a dog by ID
func (r *DogRepository) GetByID(ctx context.Context, id string) (*models.Dog, error) {
	query := `SELECT ` + dogColumns + ` FROM dogs WHERE id = $1`
	dog, err := scanDog(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("dog %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get dog: %w", err)
	}
	return dog, nil
}

// GetByIDs retrieves the dogs that exist among ids, preserving the order of ids
func (r *DogRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Dog, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + dogColumns + ` FROM dogs WHERE id = ANY($1)`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query dogs: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]models.Dog, len(ids))
	for rows.Next() {
		dog, err := scanDog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dog: %w", err)
		}
		byID[dog.ID] = *dog
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dogs: %w", err)
	}

	dogs := make([]models.Dog, 0, len(byID))
	for _, id := range ids {
		if dog, ok := byID[id]; ok {
			dogs = append(dogs, dog)
		}
	}
	return dogs, nil
}

// UpdateVaccinations sets whichever vaccination dates are given
func (r *DogRepository) UpdateVaccinations(ctx context.Context, id string, first, second *time.Time) error {
	query := `
		UPDATE dogs
		SET core_vaccination_1_date = COALESCE($1::timestamptz, core_vaccination_1_date),
		    core_vaccination_2_date = COALESCE($2::timestamptz, core_vaccination_2_date)
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, first, second, id)
	if err != nil {
		return fmt.Errorf("failed to update vaccinations: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dog %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// UpdateMode sets the dog's mode
func (r *DogRepository) UpdateMode(ctx context.Context, id string, mode models.DogMode) error {
	tag, err := r.db.Exec(ctx, `UPDATE dogs SET mode = $1 WHERE id = $2`, mode, id)
	if err != nil {
		return fmt.Errorf("failed to update dog mode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dog %s: %w", id, repository.ErrNotFound)
	}
	return nil
}
