package models

import "time"

// MatchStatus is the state of a match request
type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusAccepted MatchStatus = "accepted"
	MatchStatusRejected MatchStatus = "rejected"
)

// MatchRequest represents a request from one dog to play with another
type MatchRequest struct {
	ID         string      `json:"id"`
	FromUserID string      `json:"fromUserId"`
	FromDogID  string      `json:"fromDogId"`
	ToUserID   string      `json:"toUserId"`
	ToDogID    string      `json:"toDogId"`
	Status     MatchStatus `json:"status"`
	Message    string      `json:"message,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  *time.Time  `json:"updatedAt,omitempty"`
}

// MatchDirection selects which side of a dog's match requests to list
type MatchDirection string

const (
	MatchDirectionIncoming MatchDirection = "incoming"
	MatchDirectionOutgoing MatchDirection = "outgoing"
	MatchDirectionAccepted MatchDirection = "accepted"
)
