package models

import "time"

// Review is a post meet-up rating of one participant by the other
type Review struct {
	ID         string    `json:"id"`
	MeetupID   string    `json:"meetupId"`
	ReviewerID string    `json:"reviewerId"`
	RevieweeID string    `json:"revieweeId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReviewCard is a review enriched with the dogs of its meet-up
type ReviewCard struct {
	Review
	ReviewerDogName  string `json:"reviewerDogName,omitempty"`
	RevieweeDogName  string `json:"revieweeDogName,omitempty"`
	ReviewerDogImage string `json:"reviewerDogImage,omitempty"`
	RevieweeDogImage string `json:"revieweeDogImage,omitempty"`
}
