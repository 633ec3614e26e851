package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"playdate-backend/internal/models"
	"playdate-backend/internal/repository"
)

type chatRepo struct {
	mu       sync.RWMutex
	rooms    map[string]models.ChatRoom
	messages map[string][]models.Message
}

// NewChatRepo creates an empty in-memory chat repository
func NewChatRepo() repository.ChatRepository {
	return &chatRepo{
		rooms:    make(map[string]models.ChatRoom),
		messages: make(map[string][]models.Message),
	}
}

// copyRoom detaches the slices so callers cannot mutate stored rooms
func copyRoom(room models.ChatRoom) models.ChatRoom {
	room.DogIDs = append([]string(nil), room.DogIDs...)
	room.UserIDs = append([]string(nil), room.UserIDs...)
	return room
}

// CreateRoom stores a room unless its id is taken
func (r *chatRepo) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[room.ID]; exists {
		return fmt.Errorf("chat room %s: %w", room.ID, repository.ErrAlreadyExists)
	}
	r.rooms[room.ID] = copyRoom(*room)
	return nil
}

// GetRoom retrieves a room by ID
func (r *chatRepo) GetRoom(ctx context.Context, id string) (*models.ChatRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, fmt.Errorf("chat room %s: %w", id, repository.ErrNotFound)
	}
	room = copyRoom(room)
	return &room, nil
}

// ListRoomsForUser returns the user's rooms, most recent activity first
func (r *chatRepo) ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ChatRoom, 0)
	for _, room := range r.rooms {
		if room.HasUser(userID) {
			out = append(out, copyRoom(room))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessage.Timestamp.After(out[j].LastMessage.Timestamp)
	})
	return out, nil
}

// UpdateLastMessage replaces a room's preview
func (r *chatRepo) UpdateLastMessage(ctx context.Context, roomID string, preview models.LastMessagePreview) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return fmt.Errorf("chat room %s: %w", roomID, repository.ErrNotFound)
	}
	room.LastMessage = preview
	r.rooms[roomID] = room
	return nil
}

// AppendMessage stores a message unless its id is taken in the room
func (r *chatRepo) AppendMessage(ctx context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.messages[msg.ChatRoomID] {
		if m.ID == msg.ID {
			return fmt.Errorf("message %s: %w", msg.ID, repository.ErrAlreadyExists)
		}
	}
	r.messages[msg.ChatRoomID] = append(r.messages[msg.ChatRoomID], *msg)
	return nil
}

// ListMessages returns a room's messages, oldest first
func (r *chatRepo) ListMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]models.Message{}, r.messages[roomID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// LatestMessageForMeetup returns the newest message referencing the meetup
func (r *chatRepo) LatestMessageForMeetup(ctx context.Context, roomID, meetupID string) (*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found  *models.Message
		latest time.Time
	)
	for i := range r.messages[roomID] {
		m := r.messages[roomID][i]
		if m.Type() != models.MessageTypeMeetupRequest || m.MeetupID() != meetupID {
			continue
		}
		if found == nil || !m.Timestamp.Before(latest) {
			found = &m
			latest = m.Timestamp
		}
	}
	if found == nil {
		return nil, fmt.Errorf("message for meetup %s: %w", meetupID, repository.ErrNotFound)
	}
	return found, nil
}

// UpdateMessagePayload replaces the payload of a stored message
func (r *chatRepo) UpdateMessagePayload(ctx context.Context, roomID, messageID string, payload models.MessagePayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := r.messages[roomID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Payload = payload
			return nil
		}
	}
	return fmt.Errorf("message %s: %w", messageID, repository.ErrNotFound)
}
