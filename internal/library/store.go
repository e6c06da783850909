package library

import (
	"context"
	"sort"
	"strings"

	"github.com/binhbb2204/BookHub/pkg/models"
)

// Store persists books, ratings and favourites. UpsertRating and
// ToggleFavourite must each be a single atomic operation on the
// (user, book) pair.
type Store interface {
	CreateBook(ctx context.Context, book *models.Book) error
	// GetBook returns ErrNotFound when the book does not exist.
	GetBook(ctx context.Context, id string) (*models.Book, error)
	ListBooks(ctx context.Context, query string) ([]models.Book, error)
	DeleteBook(ctx context.Context, id string) error

	// UpsertRating reports whether a rating by the user already existed.
	UpsertRating(ctx context.Context, userID, bookID string, value int) (existed bool, err error)
	RatingTally(ctx context.Context, bookID string) (Tally, error)

	// ToggleFavourite reports whether the favourite exists afterwards.
	ToggleFavourite(ctx context.Context, userID, bookID string) (present bool, err error)
	IsFavourite(ctx context.Context, userID, bookID string) (bool, error)
	// FavouriteBooks skips favourites whose book no longer exists.
	FavouriteBooks(ctx context.Context, userID string) ([]models.Book, error)

	Ping(ctx context.Context) error
	Close() error
}

func matchesQuery(b *models.Book, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Author), q)
}

func sortNewestFirst(books []models.Book) {
	sort.SliceStable(books, func(i, j int) bool {
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})
}
