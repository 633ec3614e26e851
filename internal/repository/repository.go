// Package repository declares the storage contracts used by the services.
// Implementations live in the postgres and memory subpackages.
package repository

import (
	"context"
	"errors"
	"time"

	"playdate-backend/internal/models"
)

var (
	// ErrNotFound is returned when the keyed record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned by conditional creates when the key is taken
	ErrAlreadyExists = errors.New("record already exists")
	// ErrStaleStatus is returned by compare-and-set status updates when the
	// stored status no longer matches the expected one
	ErrStaleStatus = errors.New("status changed concurrently")
)

// DogRepository stores dog profiles
type DogRepository interface {
	Create(ctx context.Context, dog *models.Dog) error
	GetByID(ctx context.Context, id string) (*models.Dog, error)
	// GetByIDs returns the dogs that exist, in the order requested
	GetByIDs(ctx context.Context, ids []string) ([]models.Dog, error)
	UpdateVaccinations(ctx context.Context, id string, first, second *time.Time) error
	UpdateMode(ctx context.Context, id string, mode models.DogMode) error
}

// UserRepository stores owner accounts
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePushToken(ctx context.Context, id string, pushToken *string) error
	UpdateReviewStats(ctx context.Context, id string, stats models.ReviewStats) error
}

// MatchRequestRepository stores match requests
type MatchRequestRepository interface {
	Create(ctx context.Context, req *models.MatchRequest) error
	GetByID(ctx context.Context, id string) (*models.MatchRequest, error)
	List(ctx context.Context) ([]models.MatchRequest, error)
	// UpdateStatus moves a request from one status to another, failing with
	// ErrStaleStatus if the stored status is not from
	UpdateStatus(ctx context.Context, id string, from, to models.MatchStatus, at time.Time) error
	ExistsFromUserToDog(ctx context.Context, fromUserID, toDogID string) (bool, error)
	// ListByDog returns requests where the dog is on either side and the
	// status is one of statuses
	ListByDog(ctx context.Context, dogID string, statuses ...models.MatchStatus) ([]models.MatchRequest, error)
}

// ChatRepository stores chat rooms and their message ledgers
type ChatRepository interface {
	// CreateRoom fails with ErrAlreadyExists if the room id is taken
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	GetRoom(ctx context.Context, id string) (*models.ChatRoom, error)
	ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error)
	UpdateLastMessage(ctx context.Context, roomID string, preview models.LastMessagePreview) error

	// AppendMessage fails with ErrAlreadyExists if the message id is taken
	AppendMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, roomID string) ([]models.Message, error)
	LatestMessageForMeetup(ctx context.Context, roomID, meetupID string) (*models.Message, error)
	UpdateMessagePayload(ctx context.Context, roomID, messageID string, payload models.MessagePayload) error
}

// MeetupRepository stores meet-up proposals
type MeetupRepository interface {
	Create(ctx context.Context, meetup *models.MeetupRequest) error
	GetByID(ctx context.Context, id string) (*models.MeetupRequest, error)
	UpdateStatus(ctx context.Context, id string, from, to models.MeetupStatus, at time.Time) error
	ListByUser(ctx context.Context, userID string) ([]models.MeetupRequest, error)
}

// ReviewRepository stores reviews
type ReviewRepository interface {
	// Create fails with ErrAlreadyExists if the review id is taken
	Create(ctx context.Context, review *models.Review) error
	ListByReviewee(ctx context.Context, userID string) ([]models.Review, error)
	ExistsForReviewer(ctx context.Context, meetupID, reviewerID string) (bool, error)
}

// Store bundles every repository
type Store struct {
	Dogs          DogRepository
	Users         UserRepository
	MatchRequests MatchRequestRepository
	Chats         ChatRepository
	Meetups       MeetupRepository
	Reviews       ReviewRepository
}
