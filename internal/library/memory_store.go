package library

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/binhbb2204/BookHub/pkg/models"
)

type pairKey struct {
	userID string
	bookID string
}

type MemoryStore struct {
	mu         sync.RWMutex
	books      map[string]*models.Book
	ratings    map[pairKey]*models.Rating
	favourites map[pairKey]*models.Favourite
	closed     bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:      make(map[string]*models.Book),
		ratings:    make(map[pairKey]*models.Rating),
		favourites: make(map[pairKey]*models.Favourite),
	}
}

func (s *MemoryStore) CreateBook(ctx context.Context, book *models.Book) error {
	if book == nil {
		return fmt.Errorf("book is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[book.ID]; ok {
		return fmt.Errorf("book %s already exists", book.ID)
	}
	copied := *book
	s.books[book.ID] = &copied
	return nil
}

func (s *MemoryStore) GetBook(ctx context.Context, id string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *book
	return &copied, nil
}

func (s *MemoryStore) ListBooks(ctx context.Context, query string) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		if matchesQuery(b, query) {
			books = append(books, *b)
		}
	}
	sortNewestFirst(books)
	return books, nil
}

func (s *MemoryStore) DeleteBook(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return ErrNotFound
	}
	delete(s.books, id)
	return nil
}

func (s *MemoryStore) UpsertRating(ctx context.Context, userID, bookID string, value int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{userID: userID, bookID: bookID}
	_, existed := s.ratings[key]
	s.ratings[key] = &models.Rating{
		UserID:    userID,
		BookID:    bookID,
		Rating:    value,
		UpdatedAt: time.Now().UTC(),
	}
	return existed, nil
}

func (s *MemoryStore) RatingTally(ctx context.Context, bookID string) (Tally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tally := Tally{}
	for key, r := range s.ratings {
		if key.bookID == bookID {
			tally[r.Rating]++
		}
	}
	return tally, nil
}

func (s *MemoryStore) ToggleFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{userID: userID, bookID: bookID}
	if _, ok := s.favourites[key]; ok {
		delete(s.favourites, key)
		return false, nil
	}
	s.favourites[key] = &models.Favourite{UserID: userID, BookID: bookID, CreatedAt: time.Now().UTC()}
	return true, nil
}

func (s *MemoryStore) IsFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.favourites[pairKey{userID: userID, bookID: bookID}]
	return ok, nil
}

func (s *MemoryStore) FavouriteBooks(ctx context.Context, userID string) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	favs := make([]*models.Favourite, 0)
	for key, f := range s.favourites {
		if key.userID == userID {
			favs = append(favs, f)
		}
	}
	sort.SliceStable(favs, func(i, j int) bool {
		return favs[i].CreatedAt.After(favs[j].CreatedAt)
	})

	books := make([]models.Book, 0, len(favs))
	for _, f := range favs {
		if b, ok := s.books[f.BookID]; ok {
			books = append(books, *b)
		}
	}
	return books, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("memory store closed")
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
