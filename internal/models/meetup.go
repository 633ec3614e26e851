package models

import "time"

// MeetupStatus is the state of a meet-up proposal
type MeetupStatus string

const (
	MeetupStatusPending   MeetupStatus = "pending"
	MeetupStatusAccepted  MeetupStatus = "accepted"
	MeetupStatusRejected  MeetupStatus = "rejected"
	MeetupStatusCancelled MeetupStatus = "cancelled"
	MeetupStatusCompleted MeetupStatus = "completed"
)

// Valid reports whether the status is one of the five known states
func (s MeetupStatus) Valid() bool {
	switch s {
	case MeetupStatusPending, MeetupStatusAccepted, MeetupStatusRejected,
		MeetupStatusCancelled, MeetupStatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves this status
func (s MeetupStatus) Terminal() bool {
	return s == MeetupStatusRejected || s == MeetupStatusCancelled || s == MeetupStatusCompleted
}

var meetupTransitions = map[MeetupStatus][]MeetupStatus{
	MeetupStatusPending:  {MeetupStatusAccepted, MeetupStatusRejected},
	MeetupStatusAccepted: {MeetupStatusCancelled, MeetupStatusCompleted},
}

// CanTransition reports whether from -> to is a valid meet-up transition
func (s MeetupStatus) CanTransition(to MeetupStatus) bool {
	for _, next := range meetupTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// MeetupRequest is a proposal to meet, living inside a chat room
type MeetupRequest struct {
	ID                 string       `json:"id"`
	ChatRoomID         string       `json:"chatRoomId"`
	SenderID           string       `json:"senderId"`
	SenderDogID        string       `json:"senderDogId"`
	ReceiverID         string       `json:"receiverId"`
	ReceiverDogID      string       `json:"receiverDogId"`
	ProposedTime       time.Time    `json:"proposedTime"`
	LocationName       string       `json:"locationName"`
	LocationCoordinate Coordinate   `json:"locationCoordinate"`
	Message            string       `json:"meetUpMessage"`
	Status             MeetupStatus `json:"status"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// IsParticipant reports whether the user is the sender or the receiver
func (m *MeetupRequest) IsParticipant(userID string) bool {
	return userID == m.SenderID || userID == m.ReceiverID
}

// OtherUserID returns the participant that is not userID
func (m *MeetupRequest) OtherUserID(userID string) string {
	if userID == m.SenderID {
		return m.ReceiverID
	}
	return m.SenderID
}

// MeetupDraft is the caller-supplied part of a new meet-up
type MeetupDraft struct {
	ProposedTime       time.Time  `json:"proposedTime"`
	LocationName       string     `json:"locationName"`
	LocationCoordinate Coordinate `json:"locationCoordinate"`
	Message            string     `json:"meetUpMessage"`
}

// MeetupDirection filters meet-ups by the user's role
type MeetupDirection string

const (
	MeetupDirectionIncoming MeetupDirection = "incoming"
	MeetupDirectionOutgoing MeetupDirection = "outgoing"
)

// MeetupSummary is a meet-up as seen by one of its participants
type MeetupSummary struct {
	ID               string          `json:"id"`
	ChatRoomID       string          `json:"chatRoomId"`
	ProposedTime     time.Time       `json:"proposedTime"`
	LocationName     string          `json:"locationName"`
	Status           MeetupStatus    `json:"status"`
	OtherUserID      string          `json:"otherUserId"`
	OtherUserName    string          `json:"otherUserName"`
	OtherDogID       string          `json:"otherDogId"`
	OtherDogName     string          `json:"otherDogName"`
	OtherDogImageURL string          `json:"otherDogImageUrl,omitempty"`
	Direction        MeetupDirection `json:"direction"`
}
