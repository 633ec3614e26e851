package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"playdate-backend/internal/models"
	"playdate-backend/internal/repository"
	"playdate-backend/internal/scoring"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ExclusionResolver finds dogs already in a live relationship with a dog
type ExclusionResolver struct {
	matchRequests repository.MatchRequestRepository
}

// NewExclusionResolver creates a new exclusion resolver
func NewExclusionResolver(matchRequests repository.MatchRequestRepository) *ExclusionResolver {
	return &ExclusionResolver{matchRequests: matchRequests}
}

// ExcludedDogIDs returns the opposite-side dog of every pending or accepted
// request involving dogID
func (e *ExclusionResolver) ExcludedDogIDs(ctx context.Context, dogID string) (map[string]struct{}, error) {
	reqs, err := e.matchRequests.ListByDog(ctx, dogID, models.MatchStatusPending, models.MatchStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list match requests: %w", err)
	}

	excluded := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if req.FromDogID == dogID {
			excluded[req.ToDogID] = struct{}{}
		} else {
			excluded[req.FromDogID] = struct{}{}
		}
	}
	return excluded, nil
}

// RankRequest is the input of a ranking run
type RankRequest struct {
	RequesterDogID  string
	CandidateDogIDs []string
	// SeenDogIDs are dropped along with the resolved exclusions
	SeenDogIDs []string
	// Location overrides the requester dog's stored coordinate
	Location *models.Coordinate
	Filters  *models.FilterSettings
}

// RankingService scores and orders candidate dogs for a requester
type RankingService struct {
	dogs       repository.DogRepository
	exclusions *ExclusionResolver
	cfg        scoring.Config
	now        func() time.Time
}

// NewRankingService creates a new ranking service
func NewRankingService(dogs repository.DogRepository, exclusions *ExclusionResolver, cfg scoring.Config) *RankingService {
	return &RankingService{
		dogs:       dogs,
		exclusions: exclusions,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Rank returns candidates with a total score of at least zero, best first.
// Equal scores keep the caller's candidate order.
func (s *RankingService) Rank(ctx context.Context, req RankRequest) ([]models.ScoredDog, error) {
	if req.RequesterDogID == "" {
		return nil, Validation("requester dog id is required")
	}

	var (
		requester *models.Dog
		excluded  map[string]struct{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dog, err := s.dogs.GetByID(gctx, req.RequesterDogID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrDogNotFound
			}
			return fmt.Errorf("failed to load requester dog: %w", err)
		}
		requester = dog
		return nil
	})
	g.Go(func() error {
		ids, err := s.exclusions.ExcludedDogIDs(gctx, req.RequesterDogID)
		if err != nil {
			return err
		}
		excluded = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, id := range req.SeenDogIDs {
		excluded[id] = struct{}{}
	}
	excluded[req.RequesterDogID] = struct{}{}

	pool := make([]string, 0, len(req.CandidateDogIDs))
	inPool := make(map[string]struct{}, len(req.CandidateDogIDs))
	for _, id := range req.CandidateDogIDs {
		if _, skip := excluded[id]; skip {
			continue
		}
		if _, dup := inPool[id]; dup {
			continue
		}
		inPool[id] = struct{}{}
		pool = append(pool, id)
	}
	if len(pool) == 0 {
		return []models.ScoredDog{}, nil
	}

	candidates, err := s.dogs.GetByIDs(ctx, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate dogs: %w", err)
	}
	if len(candidates) < len(pool) {
		found := make(map[string]struct{}, len(candidates))
		for _, c := range candidates {
			found[c.ID] = struct{}{}
		}
		for _, id := range pool {
			if _, ok := found[id]; !ok {
				log.Warn().Str("dog_id", id).Msg("Candidate dog not found, skipping")
			}
		}
	}

	origin := req.Location
	if origin == nil {
		origin = requester.Coordinate
	}
	maxDistance := s.cfg.MaxDistance(req.Filters)
	now := s.now()

	ranked := make([]models.ScoredDog, 0, len(candidates))
	for _, candidate := range candidates {
		if !scoring.PassesHardFilters(&candidate, req.Filters, now) {
			continue
		}
		b := scoring.Compatibility(requester, &candidate, req.Filters, now)
		b.Location = s.cfg.LocationScore(origin, candidate.Coordinate, maxDistance)

		total := b.Total()
		if total < 0 {
			continue
		}
		ranked = append(ranked, models.ScoredDog{
			Dog:                candidate,
			Score:              total,
			CompatibilityScore: b.Compatibility(),
			LocationScore:      b.Location,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	log.Debug().
		Str("dog_id", req.RequesterDogID).
		Int("candidates", len(req.CandidateDogIDs)).
		Int("excluded", len(req.CandidateDogIDs)-len(pool)).
		Int("ranked", len(ranked)).
		Msg("Ranked match candidates")

	return ranked, nil
}
