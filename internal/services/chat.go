package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playdate-backend/internal/models"
	"playdate-backend/internal/push"
	"playdate-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	puppyIntroText = "Please be informed that Meet-Up is disabled because your match is currently in Puppy Mode.\n" +
		"Puppies under 12 weeks should avoid in-person interactions until fully vaccinated. " +
		"You'll be able to schedule meet-ups once both dogs are in Social Mode."
	socialIntroText = "✨Matched!\n You can now chat and plan a playdate. " +
		"Remember: Positive social interactions build confidence and reduce reactivity."

	meetupRequestText  = "📨 Meet-Up Request sent!"
	meetupAcceptedText = "✅ Meet-Up Accepted"
	meetupRejectedText = "❌ Meet-Up Rejected"

	fallbackSenderName = "Your match"
)

// IntroText returns the first system message of a room
func IntroText(isPuppyMode bool) string {
	if isPuppyMode {
		return puppyIntroText
	}
	return socialIntroText
}

func introMessageID(roomID string) string {
	return "intro_" + roomID
}

// ChatService owns chat rooms and their message ledger. It is the only
// writer of a room's lastMessage preview.
type ChatService struct {
	chats         repository.ChatRepository
	dogs          repository.DogRepository
	matchRequests repository.MatchRequestRepository
	notifier      *Notifier
	now           func() time.Time
}

// NewChatService creates a new chat service
func NewChatService(
	chats repository.ChatRepository,
	dogs repository.DogRepository,
	matchRequests repository.MatchRequestRepository,
	notifier *Notifier,
) *ChatService {
	return &ChatService{
		chats:         chats,
		dogs:          dogs,
		matchRequests: matchRequests,
		notifier:      notifier,
		now:           time.Now,
	}
}

// CreateRoomInput identifies the matched pair a room is opened for
type CreateRoomInput struct {
	FromUserID string `json:"fromUserId" validate:"required"`
	FromDogID  string `json:"fromDogId" validate:"required"`
	ToUserID   string `json:"toUserId" validate:"required"`
	ToDogID    string `json:"toDogId" validate:"required"`
}

// CreateRoom opens the chat room of an accepted match. Calling it again for
// the same pair returns the existing room and repairs a missing intro
// message without duplicating it.
func (s *ChatService) CreateRoom(ctx context.Context, in CreateRoomInput) (*models.ChatRoom, error) {
	if in.FromDogID == "" || in.ToDogID == "" || in.FromUserID == "" || in.ToUserID == "" {
		return nil, Validation("fromUserId, fromDogId, toUserId and toDogId are required")
	}
	if in.FromDogID == in.ToDogID {
		return nil, Validation("a dog cannot chat with itself")
	}

	roomID := models.ChatRoomID(in.FromDogID, in.ToDogID)

	existing, err := s.chats.GetRoom(ctx, roomID)
	if err == nil {
		if in.FromUserID == in.ToUserID || !existing.HasUser(in.FromUserID) || !existing.HasUser(in.ToUserID) {
			return nil, ErrForbidden
		}
		if err := s.ensureIntro(ctx, existing, in); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get chat room: %w", err)
	}

	match, err := s.acceptedMatch(ctx, in.FromDogID, in.ToDogID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrMatchNotAccepted
	}
	// the room belongs to the owners recorded on the accepted request
	ownerOf := map[string]string{
		match.FromDogID: match.FromUserID,
		match.ToDogID:   match.ToUserID,
	}
	if ownerOf[in.FromDogID] != in.FromUserID || ownerOf[in.ToDogID] != in.ToUserID {
		return nil, ErrForbidden
	}

	var fromDog, toDog *models.Dog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.loadDog(gctx, in.FromDogID)
		fromDog = d
		return err
	})
	g.Go(func() error {
		d, err := s.loadDog(gctx, in.ToDogID)
		toDog = d
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	isPuppy := fromDog.Mode == models.DogModePuppy || toDog.Mode == models.DogModePuppy
	room := &models.ChatRoom{
		ID:          roomID,
		DogIDs:      []string{in.FromDogID, in.ToDogID},
		UserIDs:     []string{in.FromUserID, in.ToUserID},
		IsPuppyMode: isPuppy,
		CreatedAt:   now,
		LastMessage: models.LastMessagePreview{
			Text:        IntroText(isPuppy),
			Timestamp:   now,
			SenderID:    models.SystemSenderID,
			MessageType: models.MessageTypeSystem,
		},
	}

	if err := s.chats.CreateRoom(ctx, room); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// lost a race with a concurrent bootstrap of the same pair
			winner, err := s.chats.GetRoom(ctx, roomID)
			if err != nil {
				return nil, fmt.Errorf("failed to get chat room: %w", err)
			}
			return winner, nil
		}
		return nil, fmt.Errorf("failed to create chat room: %w", err)
	}

	if err := s.ensureIntro(ctx, room, in); err != nil {
		return nil, err
	}

	log.Info().
		Str("chat_room_id", roomID).
		Bool("puppy_mode", isPuppy).
		Msg("Chat room created")

	s.notifier.NotifyUser(in.ToUserID, push.Notification{
		Title: "New Match Chat",
		Body:  fmt.Sprintf("%s wants to chat with you!", fromDog.Name),
		Data:  map[string]string{"chatRoomId": roomID},
	})

	return room, nil
}

// ensureIntro appends the intro system message unless it is already there
func (s *ChatService) ensureIntro(ctx context.Context, room *models.ChatRoom, in CreateRoomInput) error {
	msg := &models.Message{
		ID:            introMessageID(room.ID),
		ChatRoomID:    room.ID,
		SenderID:      models.SystemSenderID,
		ReceiverID:    in.ToUserID,
		SenderDogID:   in.FromDogID,
		ReceiverDogID: in.ToDogID,
		Timestamp:     room.CreatedAt,
		Payload:       models.SystemPayload{Text: IntroText(room.IsPuppyMode)},
	}
	if err := s.chats.AppendMessage(ctx, msg); err != nil && !errors.Is(err, repository.ErrAlreadyExists) {
		return fmt.Errorf("failed to append intro message: %w", err)
	}
	return nil
}

// acceptedMatch returns an accepted request between the two dogs, or nil
func (s *ChatService) acceptedMatch(ctx context.Context, dogA, dogB string) (*models.MatchRequest, error) {
	reqs, err := s.matchRequests.ListByDog(ctx, dogA, models.MatchStatusAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list match requests: %w", err)
	}
	for i := range reqs {
		req := &reqs[i]
		if (req.FromDogID == dogA && req.ToDogID == dogB) || (req.FromDogID == dogB && req.ToDogID == dogA) {
			return req, nil
		}
	}
	return nil, nil
}

func (s *ChatService) loadDog(ctx context.Context, id string) (*models.Dog, error) {
	dog, err := s.dogs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDogNotFound
		}
		return nil, fmt.Errorf("failed to get dog: %w", err)
	}
	return dog, nil
}

// SendMessageInput is a plain text message from one participant to the other
type SendMessageInput struct {
	Text          string `json:"text" validate:"required"`
	SenderID      string `json:"senderId"`
	ReceiverID    string `json:"receiverId" validate:"required"`
	SenderDogID   string `json:"senderDogId" validate:"required"`
	ReceiverDogID string `json:"receiverDogId" validate:"required"`
}

// SendMessage appends a text message and refreshes the room preview
func (s *ChatService) SendMessage(ctx context.Context, roomID string, in SendMessageInput) (*models.Message, error) {
	if in.Text == "" {
		return nil, Validation("text is required")
	}

	room, err := s.GetRoom(ctx, roomID, in.SenderID)
	if err != nil {
		return nil, err
	}
	if in.ReceiverID == in.SenderID || !room.HasUser(in.ReceiverID) {
		return nil, Validation("receiver is not the other participant of this chat room")
	}
	if in.SenderDogID == in.ReceiverDogID || !containsID(room.DogIDs, in.SenderDogID) || !containsID(room.DogIDs, in.ReceiverDogID) {
		return nil, Validation("dogs do not belong to this chat room")
	}
	senderDog, err := s.loadDog(ctx, in.SenderDogID)
	if err != nil {
		return nil, err
	}
	if senderDog.OwnerID != in.SenderID {
		return nil, ErrNotDogOwner
	}

	msg := &models.Message{
		ID:            uuid.New().String(),
		ChatRoomID:    roomID,
		SenderID:      in.SenderID,
		ReceiverID:    in.ReceiverID,
		SenderDogID:   in.SenderDogID,
		ReceiverDogID: in.ReceiverDogID,
		Timestamp:     s.now(),
		Payload:       models.TextPayload{Text: in.Text},
	}
	if err := s.append(ctx, msg, msg.Preview()); err != nil {
		return nil, err
	}

	senderName := fallbackSenderName
	if senderDog.Name != "" {
		senderName = senderDog.Name
	}
	s.notifier.NotifyUser(in.ReceiverID, push.Notification{
		Title: "New Message from " + senderName,
		Body:  in.Text,
		Data: map[string]string{
			"chatRoomId":  roomID,
			"senderDogId": in.SenderDogID,
			"senderId":    in.SenderID,
			"messageType": string(models.MessageTypeText),
		},
	})

	return msg, nil
}

// append writes msg and then the room preview. A message id that already
// exists is treated as a retry of the same write.
func (s *ChatService) append(ctx context.Context, msg *models.Message, preview models.LastMessagePreview) error {
	if err := s.chats.AppendMessage(ctx, msg); err != nil {
		if !errors.Is(err, repository.ErrAlreadyExists) {
			return fmt.Errorf("failed to append message: %w", err)
		}
		log.Debug().Str("chat_room_id", msg.ChatRoomID).Str("message_id", msg.ID).Msg("Message already appended")
	}
	if err := s.chats.UpdateLastMessage(ctx, msg.ChatRoomID, preview); err != nil {
		return fmt.Errorf("failed to update last message: %w", err)
	}
	return nil
}

// GetRoom returns a room the user participates in
func (s *ChatService) GetRoom(ctx context.Context, roomID, userID string) (*models.ChatRoom, error) {
	room, err := s.chats.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChatRoomNotFound
		}
		return nil, fmt.Errorf("failed to get chat room: %w", err)
	}
	if !room.HasUser(userID) {
		return nil, ErrForbidden
	}
	return room, nil
}

// GetMessages returns the full history of a room, oldest first
func (s *ChatService) GetMessages(ctx context.Context, roomID, userID string) ([]models.Message, error) {
	if _, err := s.GetRoom(ctx, roomID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.chats.ListMessages(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// GetRoomsForUser returns the user's rooms, most recently active first
func (s *ChatService) GetRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	rooms, err := s.chats.ListRoomsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat rooms: %w", err)
	}
	if rooms == nil {
		rooms = []models.ChatRoom{}
	}
	return rooms, nil
}

// PostMeetupRequest appends the request message of a new meet-up. The
// message id is the meet-up id, so a retry cannot duplicate it.
func (s *ChatService) PostMeetupRequest(ctx context.Context, m *models.MeetupRequest) error {
	msg := &models.Message{
		ID:            m.ID,
		ChatRoomID:    m.ChatRoomID,
		SenderID:      m.SenderID,
		ReceiverID:    m.ReceiverID,
		SenderDogID:   m.SenderDogID,
		ReceiverDogID: m.ReceiverDogID,
		Timestamp:     m.CreatedAt,
		Payload:       models.MeetupPayload{Text: meetupRequestText, MeetupID: m.ID},
	}
	return s.append(ctx, msg, msg.Preview())
}

// PostMeetupStatus rewrites the latest request message of the meet-up to
// show its accepted or rejected state and refreshes the preview
func (s *ChatService) PostMeetupStatus(ctx context.Context, m *models.MeetupRequest, actorID string) error {
	var text string
	switch m.Status {
	case models.MeetupStatusAccepted:
		text = meetupAcceptedText
	case models.MeetupStatusRejected:
		text = meetupRejectedText
	default:
		return fmt.Errorf("no request message text for meetup status %q", m.Status)
	}

	msg, err := s.chats.LatestMessageForMeetup(ctx, m.ChatRoomID, m.ID)
	switch {
	case err == nil:
		payload := models.MeetupPayload{Text: text, MeetupID: m.ID}
		if err := s.chats.UpdateMessagePayload(ctx, m.ChatRoomID, msg.ID, payload); err != nil {
			return fmt.Errorf("failed to update meetup message: %w", err)
		}
	case errors.Is(err, repository.ErrNotFound):
		log.Warn().Str("chat_room_id", m.ChatRoomID).Str("meetup_id", m.ID).Msg("No request message found for meetup")
	default:
		return fmt.Errorf("failed to find meetup message: %w", err)
	}

	preview := models.LastMessagePreview{
		Text:        text,
		Timestamp:   s.now(),
		SenderID:    actorID,
		MessageType: models.MessageTypeSystem,
	}
	if err := s.chats.UpdateLastMessage(ctx, m.ChatRoomID, preview); err != nil {
		return fmt.Errorf("failed to update last message: %w", err)
	}
	return nil
}

// MeetupNotice is a system message about a meet-up
type MeetupNotice struct {
	MessageID   string
	Text        string
	PreviewText string
	SenderID    string
	ReceiverID  string
	At          time.Time
}

// PostMeetupSystem appends a system message referencing the meet-up
func (s *ChatService) PostMeetupSystem(ctx context.Context, m *models.MeetupRequest, n MeetupNotice) error {
	msg := &models.Message{
		ID:            n.MessageID,
		ChatRoomID:    m.ChatRoomID,
		SenderID:      n.SenderID,
		ReceiverID:    n.ReceiverID,
		SenderDogID:   m.SenderDogID,
		ReceiverDogID: m.ReceiverDogID,
		Timestamp:     n.At,
		Payload:       models.SystemPayload{Text: n.Text, MeetupID: m.ID},
	}
	preview := msg.Preview()
	if n.PreviewText != "" {
		preview.Text = n.PreviewText
	}
	return s.append(ctx, msg, preview)
}
