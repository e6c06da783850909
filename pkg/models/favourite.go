package models

import "time"

type Favourite struct {
	UserID    string    `json:"user" db:"user_id"`
	BookID    string    `json:"book" db:"book_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
