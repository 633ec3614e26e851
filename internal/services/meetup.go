package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"playdate-backend/internal/models"
	"playdate-backend/internal/push"
	"playdate-backend/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const summaryLookupLimit = 8

// MeetupService handles the meet-up lifecycle inside a chat room
type MeetupService struct {
	meetups  repository.MeetupRepository
	dogs     repository.DogRepository
	users    repository.UserRepository
	chats    *ChatService
	notifier *Notifier
	now      func() time.Time
}

// NewMeetupService creates a new meetup service
func NewMeetupService(
	meetups repository.MeetupRepository,
	dogs repository.DogRepository,
	users repository.UserRepository,
	chats *ChatService,
	notifier *Notifier,
) *MeetupService {
	return &MeetupService{
		meetups:  meetups,
		dogs:     dogs,
		users:    users,
		chats:    chats,
		notifier: notifier,
		now:      time.Now,
	}
}

// CreateMeetupInput represents a meet-up proposal
type CreateMeetupInput struct {
	SenderID      string             `json:"senderId"`
	ReceiverID    string             `json:"receiverId" validate:"required"`
	SenderDogID   string             `json:"senderDogId" validate:"required"`
	ReceiverDogID string             `json:"receiverDogId" validate:"required"`
	Draft         models.MeetupDraft `json:"meetup"`
}

// Create proposes a meet-up. Both dogs must be in social mode.
func (s *MeetupService) Create(ctx context.Context, roomID string, in CreateMeetupInput) (*models.MeetupRequest, error) {
	if in.Draft.ProposedTime.IsZero() {
		return nil, Validation("proposedTime is required")
	}
	if in.Draft.LocationName == "" {
		return nil, Validation("locationName is required")
	}
	if in.SenderDogID == in.ReceiverDogID {
		return nil, Validation("senderDogId and receiverDogId must differ")
	}

	room, err := s.chats.GetRoom(ctx, roomID, in.SenderID)
	if err != nil {
		return nil, err
	}
	if in.ReceiverID == in.SenderID || !room.HasUser(in.ReceiverID) {
		return nil, Validation("receiver is not the other participant of this chat room")
	}
	if !containsID(room.DogIDs, in.SenderDogID) || !containsID(room.DogIDs, in.ReceiverDogID) {
		return nil, Validation("dogs do not belong to this chat room")
	}

	var senderDog, receiverDog *models.Dog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.chats.loadDog(gctx, in.SenderDogID)
		senderDog = d
		return err
	})
	g.Go(func() error {
		d, err := s.chats.loadDog(gctx, in.ReceiverDogID)
		receiverDog = d
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if senderDog.OwnerID != in.SenderID {
		return nil, ErrNotDogOwner
	}
	if receiverDog.OwnerID != in.ReceiverID {
		return nil, Validation("receiverId does not own receiverDogId")
	}
	if senderDog.Mode == models.DogModePuppy || receiverDog.Mode == models.DogModePuppy {
		return nil, ErrPuppyModeBlocked
	}

	now := s.now()
	m := &models.MeetupRequest{
		ID:                 fmt.Sprintf("meetup_%s_%d", roomID, now.UnixMilli()),
		ChatRoomID:         roomID,
		SenderID:           in.SenderID,
		SenderDogID:        in.SenderDogID,
		ReceiverID:         in.ReceiverID,
		ReceiverDogID:      in.ReceiverDogID,
		ProposedTime:       in.Draft.ProposedTime,
		LocationName:       in.Draft.LocationName,
		LocationCoordinate: in.Draft.LocationCoordinate,
		Message:            in.Draft.Message,
		Status:             models.MeetupStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.meetups.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrRequestInFlight
		}
		return nil, fmt.Errorf("failed to create meetup: %w", err)
	}

	log.Info().
		Str("meetup_id", m.ID).
		Str("chat_room_id", roomID).
		Msg("Meetup created")

	if err := s.chats.PostMeetupRequest(ctx, m); err != nil {
		log.Error().Err(err).Str("meetup_id", m.ID).Msg("Failed to post meetup request message")
	}

	s.notifier.NotifyUser(m.ReceiverID, push.Notification{
		Title: "📨 New Meet-Up Request",
		Body:  "You have a new meet-up request",
		Data: map[string]string{
			"chatRoomId":  roomID,
			"meetupId":    m.ID,
			"messageType": string(models.MessageTypeMeetupRequest),
		},
	})

	return m, nil
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// get loads a meet-up and checks it belongs to the room
func (s *MeetupService) get(ctx context.Context, roomID, meetupID string) (*models.MeetupRequest, error) {
	m, err := s.meetups.GetByID(ctx, meetupID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeetupNotFound
		}
		return nil, fmt.Errorf("failed to get meetup: %w", err)
	}
	if m.ChatRoomID != roomID {
		return nil, ErrMeetupNotFound
	}
	return m, nil
}

// transition moves m to status with a compare-and-set on its current status
func (s *MeetupService) transition(ctx context.Context, m *models.MeetupRequest, to models.MeetupStatus) error {
	if !m.Status.CanTransition(to) {
		return ErrInvalidTransition
	}
	now := s.now()
	if err := s.meetups.UpdateStatus(ctx, m.ID, m.Status, to, now); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return ErrInvalidTransition
		}
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMeetupNotFound
		}
		return fmt.Errorf("failed to update meetup status: %w", err)
	}

	log.Info().
		Str("meetup_id", m.ID).
		Str("from", string(m.Status)).
		Str("to", string(to)).
		Msg("Meetup status changed")

	m.Status = to
	m.UpdatedAt = now
	return nil
}

// UpdateStatus lets the receiver accept or reject a pending meet-up
func (s *MeetupService) UpdateStatus(ctx context.Context, roomID, meetupID string, status models.MeetupStatus, actingUserID string) (*models.MeetupRequest, error) {
	if status != models.MeetupStatusAccepted && status != models.MeetupStatusRejected {
		return nil, Validation("status must be %q or %q", models.MeetupStatusAccepted, models.MeetupStatusRejected)
	}

	m, err := s.get(ctx, roomID, meetupID)
	if err != nil {
		return nil, err
	}
	if m.ReceiverID != actingUserID {
		return nil, ErrForbidden
	}
	if err := s.transition(ctx, m, status); err != nil {
		return nil, err
	}

	if err := s.chats.PostMeetupStatus(ctx, m, actingUserID); err != nil {
		log.Error().Err(err).Str("meetup_id", m.ID).Msg("Failed to update meetup message")
	}

	if status == models.MeetupStatusAccepted {
		s.notifier.NotifyUser(m.SenderID, push.Notification{
			Title: "✅ Meet-Up Accepted",
			Body:  "Your match has accepted the meet-up request!",
			Data: map[string]string{
				"chatRoomId":  roomID,
				"meetupId":    m.ID,
				"messageType": string(models.MessageTypeSystem),
			},
		})
	}

	return m, nil
}

// Cancel cancels an accepted meet-up. Either participant may cancel.
func (s *MeetupService) Cancel(ctx context.Context, roomID, meetupID, userID string) (*models.MeetupRequest, error) {
	m, err := s.get(ctx, roomID, meetupID)
	if err != nil {
		return nil, err
	}
	if !m.IsParticipant(userID) {
		return nil, ErrForbidden
	}
	if err := s.transition(ctx, m, models.MeetupStatusCancelled); err != nil {
		return nil, err
	}

	other := m.OtherUserID(userID)
	notice := MeetupNotice{
		MessageID:  fmt.Sprintf("cancel_%s_%d", m.ID, m.UpdatedAt.UnixMilli()),
		Text:       "❌ Meet-Up Cancelled",
		SenderID:   userID,
		ReceiverID: other,
		At:         m.UpdatedAt,
	}
	if err := s.chats.PostMeetupSystem(ctx, m, notice); err != nil {
		log.Error().Err(err).Str("meetup_id", m.ID).Msg("Failed to post meetup cancellation message")
	}

	s.notifier.NotifyUser(other, push.Notification{
		Title: "❌ Meet-Up Cancelled",
		Body:  "The accepted meet-up has been cancelled.",
		Data: map[string]string{
			"chatRoomId":  roomID,
			"meetupId":    m.ID,
			"messageType": string(models.MessageTypeSystem),
		},
	})

	return m, nil
}

// Complete marks an accepted meet-up as completed, opening it for reviews
func (s *MeetupService) Complete(ctx context.Context, roomID, meetupID, userID string) (*models.MeetupRequest, error) {
	m, err := s.get(ctx, roomID, meetupID)
	if err != nil {
		return nil, err
	}
	if !m.IsParticipant(userID) {
		return nil, ErrForbidden
	}
	if err := s.transition(ctx, m, models.MeetupStatusCompleted); err != nil {
		return nil, err
	}

	other := m.OtherUserID(userID)
	notice := MeetupNotice{
		MessageID:   fmt.Sprintf("completed_%s_%d", m.ID, m.UpdatedAt.UnixMilli()),
		Text:        "✅ Meet-Up marked as completed. You can now leave a review.",
		PreviewText: "✅ Meet-Up Completed",
		SenderID:    userID,
		ReceiverID:  other,
		At:          m.UpdatedAt,
	}
	if err := s.chats.PostMeetupSystem(ctx, m, notice); err != nil {
		log.Error().Err(err).Str("meetup_id", m.ID).Msg("Failed to post meetup completion message")
	}

	s.notifier.NotifyUser(other, push.Notification{
		Title: "✅ Meet-Up Completed",
		Body:  "Your meet-up has been marked as completed. You can now leave a review.",
		Data: map[string]string{
			"chatRoomId": roomID,
			"meetupId":   m.ID,
			"status":     string(models.MeetupStatusCompleted),
		},
	})

	return m, nil
}

// ListByUser returns the user's meet-ups as summaries, soonest first.
// Empty direction or status means no filter on that field.
func (s *MeetupService) ListByUser(ctx context.Context, userID string, direction models.MeetupDirection, status models.MeetupStatus) ([]models.MeetupSummary, error) {
	if direction != "" && direction != models.MeetupDirectionIncoming && direction != models.MeetupDirectionOutgoing {
		return nil, Validation("type must be incoming or outgoing")
	}
	if status != "" && !status.Valid() {
		return nil, Validation("unknown meetup status %q", status)
	}

	all, err := s.meetups.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetups: %w", err)
	}

	selected := make([]models.MeetupRequest, 0, len(all))
	for _, m := range all {
		if direction == models.MeetupDirectionIncoming && m.ReceiverID != userID {
			continue
		}
		if direction == models.MeetupDirectionOutgoing && m.SenderID != userID {
			continue
		}
		if status != "" && m.Status != status {
			continue
		}
		selected = append(selected, m)
	}

	summaries := make([]models.MeetupSummary, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryLookupLimit)
	for i := range selected {
		i := i
		m := selected[i]
		g.Go(func() error {
			summaries[i] = s.summarize(gctx, &m, userID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ProposedTime.Before(summaries[j].ProposedTime)
	})
	return summaries, nil
}

// summarize resolves the other participant's display data. Lookup failures
// fall back to placeholder values.
func (s *MeetupService) summarize(ctx context.Context, m *models.MeetupRequest, userID string) models.MeetupSummary {
	sum := models.MeetupSummary{
		ID:            m.ID,
		ChatRoomID:    m.ChatRoomID,
		ProposedTime:  m.ProposedTime,
		LocationName:  m.LocationName,
		Status:        m.Status,
		OtherUserName: "Unknown",
		OtherDogName:  "Dog",
		Direction:     models.MeetupDirectionOutgoing,
	}
	if m.SenderID == userID {
		sum.OtherUserID = m.ReceiverID
		sum.OtherDogID = m.ReceiverDogID
	} else {
		sum.OtherUserID = m.SenderID
		sum.OtherDogID = m.SenderDogID
		sum.Direction = models.MeetupDirectionIncoming
	}

	if user, err := s.users.GetByID(ctx, sum.OtherUserID); err == nil {
		if user.Name != "" {
			sum.OtherUserName = user.Name
		}
	} else {
		log.Warn().Err(err).Str("user_id", sum.OtherUserID).Msg("Meetup summary user lookup failed")
	}
	if dog, err := s.dogs.GetByID(ctx, sum.OtherDogID); err == nil {
		if dog.Name != "" {
			sum.OtherDogName = dog.Name
		}
		sum.OtherDogImageURL = dog.FirstImage()
	} else {
		log.Warn().Err(err).Str("dog_id", sum.OtherDogID).Msg("Meetup summary dog lookup failed")
	}
	return sum
}
