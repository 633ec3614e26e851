package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playdate-backend/internal/lock"
	"playdate-backend/internal/models"
	"playdate-backend/internal/push"
	"playdate-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// MatchRequestService handles match request business logic
type MatchRequestService struct {
	matchRequests repository.MatchRequestRepository
	dogs          repository.DogRepository
	chats         *ChatService
	notifier      *Notifier
	locker        lock.Locker
	lockTTL       time.Duration
	now           func() time.Time
}

// NewMatchRequestService creates a new match request service
func NewMatchRequestService(
	matchRequests repository.MatchRequestRepository,
	dogs repository.DogRepository,
	chats *ChatService,
	notifier *Notifier,
	locker lock.Locker,
	lockTTL time.Duration,
) *MatchRequestService {
	return &MatchRequestService{
		matchRequests: matchRequests,
		dogs:          dogs,
		chats:         chats,
		notifier:      notifier,
		locker:        locker,
		lockTTL:       lockTTL,
		now:           time.Now,
	}
}

// CreateMatchRequestInput represents a request to play with another dog
type CreateMatchRequestInput struct {
	FromUserID string `json:"fromUserId"`
	FromDogID  string `json:"fromDogId" validate:"required"`
	ToUserID   string `json:"toUserId" validate:"required"`
	ToDogID    string `json:"toDogId" validate:"required"`
	Message    string `json:"message" validate:"max=500"`
}

// Create creates a pending match request and notifies the target owner.
// A second request from the same user to the same dog is rejected whatever
// the status of the first.
func (s *MatchRequestService) Create(ctx context.Context, in CreateMatchRequestInput) (*models.MatchRequest, error) {
	if in.FromUserID == "" || in.FromDogID == "" || in.ToUserID == "" || in.ToDogID == "" {
		return nil, Validation("fromUserId, fromDogId, toUserId and toDogId are required")
	}
	if in.FromDogID == in.ToDogID {
		return nil, Validation("a dog cannot send a match request to itself")
	}
	if in.FromUserID == in.ToUserID {
		return nil, Validation("cannot send a match request to your own dog")
	}

	var fromDog, toDog *models.Dog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.chats.loadDog(gctx, in.FromDogID)
		fromDog = d
		return err
	})
	g.Go(func() error {
		d, err := s.chats.loadDog(gctx, in.ToDogID)
		toDog = d
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if fromDog.OwnerID != in.FromUserID {
		return nil, ErrNotDogOwner
	}
	if toDog.OwnerID != in.ToUserID {
		return nil, Validation("toUserId does not own toDogId")
	}

	release, err := s.locker.Acquire(ctx, "match_request:"+in.FromUserID+":"+in.ToDogID, s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			return nil, ErrRequestInFlight
		}
		return nil, fmt.Errorf("failed to acquire match request lock: %w", err)
	}
	defer release()

	exists, err := s.matchRequests.ExistsFromUserToDog(ctx, in.FromUserID, in.ToDogID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing match requests: %w", err)
	}
	if exists {
		return nil, ErrDuplicateRequest
	}

	req := &models.MatchRequest{
		ID:         uuid.New().String(),
		FromUserID: in.FromUserID,
		FromDogID:  in.FromDogID,
		ToUserID:   in.ToUserID,
		ToDogID:    in.ToDogID,
		Status:     models.MatchStatusPending,
		Message:    in.Message,
		CreatedAt:  s.now(),
	}
	if err := s.matchRequests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create match request: %w", err)
	}

	log.Info().
		Str("match_request_id", req.ID).
		Str("from_dog_id", req.FromDogID).
		Str("to_dog_id", req.ToDogID).
		Msg("Match request created")

	s.notifier.NotifyUser(req.ToUserID, push.Notification{
		Title: "New Match Request",
		Body:  fmt.Sprintf("%s wants to play with %s!", fromDog.Name, toDog.Name),
		Data:  matchRequestData(req),
	})

	return req, nil
}

func matchRequestData(req *models.MatchRequest) map[string]string {
	return map[string]string{
		"matchRequestId": req.ID,
		"fromDogId":      req.FromDogID,
		"toDogId":        req.ToDogID,
	}
}

// StatusUpdateResult is the outcome of answering a match request
type StatusUpdateResult struct {
	MatchRequest *models.MatchRequest `json:"matchRequest"`
	ChatRoomID   string               `json:"chatRoomId,omitempty"`
}

// UpdateStatus lets the receiving owner accept or reject a pending request.
// Accepting opens the chat room of the pair. Accepting an already accepted
// request only re-runs the room bootstrap, which is idempotent.
func (s *MatchRequestService) UpdateStatus(ctx context.Context, id string, status models.MatchStatus, actingUserID string) (*StatusUpdateResult, error) {
	if status != models.MatchStatusAccepted && status != models.MatchStatusRejected {
		return nil, Validation("status must be %q or %q", models.MatchStatusAccepted, models.MatchStatusRejected)
	}

	req, err := s.matchRequests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMatchRequestNotFound
		}
		return nil, fmt.Errorf("failed to get match request: %w", err)
	}
	if req.ToUserID != actingUserID {
		return nil, ErrForbidden
	}

	if req.Status == models.MatchStatusAccepted && status == models.MatchStatusAccepted {
		room, err := s.bootstrapChat(ctx, req)
		if err != nil {
			return nil, err
		}
		return &StatusUpdateResult{MatchRequest: req, ChatRoomID: room.ID}, nil
	}
	if req.Status != models.MatchStatusPending {
		return nil, ErrMatchAlreadyResolved
	}

	now := s.now()
	if err := s.matchRequests.UpdateStatus(ctx, id, models.MatchStatusPending, status, now); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrMatchAlreadyResolved
		}
		return nil, fmt.Errorf("failed to update match request status: %w", err)
	}
	req.Status = status
	req.UpdatedAt = &now

	log.Info().
		Str("match_request_id", req.ID).
		Str("status", string(status)).
		Msg("Match request answered")

	result := &StatusUpdateResult{MatchRequest: req}
	if status == models.MatchStatusRejected {
		return result, nil
	}

	toDogName := fallbackSenderName
	if dog, err := s.dogs.GetByID(ctx, req.ToDogID); err == nil && dog.Name != "" {
		toDogName = dog.Name
	}
	s.notifier.NotifyUser(req.FromUserID, push.Notification{
		Title: "Match Accepted",
		Body:  fmt.Sprintf("%s accepted your match request!", toDogName),
		Data:  matchRequestData(req),
	})

	room, err := s.bootstrapChat(ctx, req)
	if err != nil {
		return nil, err
	}
	result.ChatRoomID = room.ID
	return result, nil
}

func (s *MatchRequestService) bootstrapChat(ctx context.Context, req *models.MatchRequest) (*models.ChatRoom, error) {
	room, err := s.chats.CreateRoom(ctx, CreateRoomInput{
		FromUserID: req.FromUserID,
		FromDogID:  req.FromDogID,
		ToUserID:   req.ToUserID,
		ToDogID:    req.ToDogID,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("match_request_id", req.ID).
			Msg("Chat bootstrap failed, match stays accepted and can be retried")
		return nil, err
	}
	return room, nil
}

// List returns every match request, newest first
func (s *MatchRequestService) List(ctx context.Context) ([]models.MatchRequest, error) {
	reqs, err := s.matchRequests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list match requests: %w", err)
	}
	if reqs == nil {
		reqs = []models.MatchRequest{}
	}
	return reqs, nil
}

// ListForDog returns the dog's requests in one direction: pending requests
// it received, pending requests it sent, or accepted requests on either side
func (s *MatchRequestService) ListForDog(ctx context.Context, dogID string, direction models.MatchDirection) ([]models.MatchRequest, error) {
	var (
		status models.MatchStatus
		keep   func(models.MatchRequest) bool
	)
	switch direction {
	case models.MatchDirectionIncoming:
		status = models.MatchStatusPending
		keep = func(r models.MatchRequest) bool { return r.ToDogID == dogID }
	case models.MatchDirectionOutgoing:
		status = models.MatchStatusPending
		keep = func(r models.MatchRequest) bool { return r.FromDogID == dogID }
	case models.MatchDirectionAccepted:
		status = models.MatchStatusAccepted
		keep = func(models.MatchRequest) bool { return true }
	default:
		return nil, Validation("type must be one of incoming, outgoing, accepted")
	}

	reqs, err := s.matchRequests.ListByDog(ctx, dogID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list match requests: %w", err)
	}

	out := make([]models.MatchRequest, 0, len(reqs))
	for _, r := range reqs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
