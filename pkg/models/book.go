package models

import "time"

type Book struct {
	ID          string    `json:"_id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Author      string    `json:"author" db:"author"`
	Description string    `json:"description" db:"description"`
	CoverFile   string    `json:"coverFile,omitempty" db:"cover_file"`
	PDFFile     string    `json:"pdfFile,omitempty" db:"pdf_file"`
	AddedBy     string    `json:"addedBy" db:"added_by"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// AddBookRequest carries the user-supplied fields of a new book. The asset
// fields are references to files stored elsewhere.
type AddBookRequest struct {
	Title       string `json:"title" form:"title"`
	Author      string `json:"author" form:"author"`
	Description string `json:"description" form:"description"`
	CoverFile   string `json:"coverFile" form:"coverFile"`
	PDFFile     string `json:"pdfFile" form:"pdfFile"`
}

type SearchBooksRequest struct {
	Query string `form:"q"`
}

// BookDetail is a book as seen by one user.
type BookDetail struct {
	Book
	InFavourite bool             `json:"inFavourite"`
	Rating      RatingStatistics `json:"rating"`
}
