package models

// User represents an owner account. AverageRating and ReviewCount are
// derived fields written only by the review service.
type User struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	ImageURL      string      `json:"imageURL,omitempty"`
	PrimaryDogID  string      `json:"primaryDogId,omitempty"`
	PushToken     *string     `json:"pushToken,omitempty"`
	Coordinate    *Coordinate `json:"coordinate,omitempty"`
	AverageRating float64     `json:"averageRating"`
	ReviewCount   int         `json:"reviewCount"`
}

// ReviewStats is the denormalized rating summary of a user
type ReviewStats struct {
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}
