package events

import "time"

type EventType string

const (
	EventSnapshot      EventType = "snapshot"
	EventRatingUpdated EventType = "rating.updated"
	EventBookDeleted   EventType = "book.deleted"
)

// Event is pushed to every subscriber of a book.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	BookID    string      `json:"book"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}
