package models

import (
	"encoding/json"
	"time"
)

type Rating struct {
	UserID    string    `json:"user" db:"user_id"`
	BookID    string    `json:"book" db:"book_id"`
	Rating    int       `json:"rating" db:"rating"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// RatingRequest keeps the rating raw so that "4", 4 and 4.5 can be told apart.
type RatingRequest struct {
	Book   string          `json:"book"`
	Rating json.RawMessage `json:"rating"`
}

// RatingStatistics is derived from the ratings of one book and never stored.
type RatingStatistics struct {
	AvgRating      float64        `json:"avgRating"`
	ReviewCount    int            `json:"reviewCount"`
	Recommendation float64        `json:"recommendation"`
	IndividualPerc map[string]int `json:"individualPerc"`
}
