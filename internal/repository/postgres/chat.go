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

const (
	chatRoomColumns = `id, dog_ids, user_ids, is_puppy_mode, created_at,
		last_message_text, last_message_at, last_message_sender, last_message_type`
	messageColumns = `id, chat_room_id, sender_id, receiver_id, sender_dog_id, receiver_dog_id,
		message_type, text, meetup_id, sent_at`
)

// ChatRepository handles database operations for chat rooms and messages
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateRoom inserts the room unless its id is already taken
func (r *ChatRepository) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	query := `
		INSERT INTO chat_rooms (` + chatRoomColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	lm := room.LastMessage
	tag, err := r.db.Exec(ctx, query,
		room.ID, room.DogIDs, room.UserIDs, room.IsPuppyMode, room.CreatedAt,
		lm.Text, lm.Timestamp, lm.SenderID, lm.MessageType,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chat room %s: %w", room.ID, repository.ErrAlreadyExists)
	}
	return nil
}

func scanChatRoom(row pgx.Row) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := row.Scan(
		&room.ID, &room.DogIDs, &room.UserIDs, &room.IsPuppyMode, &room.CreatedAt,
		&room.LastMessage.Text, &room.LastMessage.Timestamp,
		&room.LastMessage.SenderID, &room.LastMessage.MessageType,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoom retrieves a chat room by ID
func (r *ChatRepository) GetRoom(ctx context.Context, id string) (*models.ChatRoom, error) {
	query := `SELECT ` + chatRoomColumns + ` FROM chat_rooms WHERE id = $1`
	room, err := scanChatRoom(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("chat room %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get chat room: %w", err)
	}
	return room, nil
}

// ListRoomsForUser returns the user's rooms, most recently active first
func (r *ChatRepository) ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	query := `
		SELECT ` + chatRoomColumns + `
		FROM chat_rooms
		WHERE $1 = ANY(user_ids)
		ORDER BY last_message_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.ChatRoom
	for rows.Next() {
		room, err := scanChatRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat room: %w", err)
		}
		rooms = append(rooms, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat rooms: %w", err)
	}
	return rooms, nil
}

// UpdateLastMessage overwrites the room's preview
func (r *ChatRepository) UpdateLastMessage(ctx context.Context, roomID string, preview models.LastMessagePreview) error {
	query := `
		UPDATE chat_rooms
		SET last_message_text = $1, last_message_at = $2, last_message_sender = $3, last_message_type = $4
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query, preview.Text, preview.Timestamp, preview.SenderID, preview.MessageType, roomID)
	if err != nil {
		return fmt.Errorf("failed to update last message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chat room %s: %w", roomID, repository.ErrNotFound)
	}
	return nil
}

// AppendMessage inserts the message unless its id is already taken in the room
func (r *ChatRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO chat_messages (` + messageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (chat_room_id, id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		msg.ID, msg.ChatRoomID, msg.SenderID, msg.ReceiverID, msg.SenderDogID, msg.ReceiverDogID,
		msg.Type(), msg.Text(), msg.MeetupID(), msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("message %s: %w", msg.ID, repository.ErrAlreadyExists)
	}
	return nil
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var (
		msg            models.Message
		msgType        models.MessageType
		text, meetupID string
	)
	err := row.Scan(
		&msg.ID, &msg.ChatRoomID, &msg.SenderID, &msg.ReceiverID, &msg.SenderDogID, &msg.ReceiverDogID,
		&msgType, &text, &meetupID, &msg.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	payload, err := models.NewPayload(msgType, text, meetupID)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", msg.ID, err)
	}
	msg.Payload = payload
	return &msg, nil
}

// ListMessages returns the room's ledger in timestamp order
func (r *ChatRepository) ListMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM chat_messages
		WHERE chat_room_id = $1
		ORDER BY sent_at ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return msgs, nil
}

// LatestMessageForMeetup returns the newest message referencing the meet-up
func (r *ChatRepository) LatestMessageForMeetup(ctx context.Context, roomID, meetupID string) (*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM chat_messages
		WHERE chat_room_id = $1 AND meetup_id = $2 AND message_type = $3
		ORDER BY sent_at DESC
		LIMIT 1
	`
	msg, err := scanMessage(r.db.QueryRow(ctx, query, roomID, meetupID, models.MessageTypeMeetupRequest))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("message for meetup %s: %w", meetupID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get meetup message: %w", err)
	}
	return msg, nil
}

// UpdateMessagePayload rewrites the payload columns of one message
func (r *ChatRepository) UpdateMessagePayload(ctx context.Context, roomID, messageID string, payload models.MessagePayload) error {
	query := `
		UPDATE chat_messages
		SET message_type = $1, text = $2, meetup_id = $3
		WHERE chat_room_id = $4 AND id = $5
	`
	tag, err := r.db.Exec(ctx, query, payload.Type(), payload.DisplayText(), payload.MeetupRef(), roomID, messageID)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("message %s: %w", messageID, repository.ErrNotFound)
	}
	return nil
}
