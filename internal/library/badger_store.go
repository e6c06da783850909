package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/binhbb2204/BookHub/pkg/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"
)

// Key layout:
//
//	book:{bookID}
//	rating:{bookID}:{userID}
//	favourite:{userID}:{bookID}
const (
	bookPrefix      = "book:"
	ratingPrefix    = "rating:"
	favouritePrefix = "favourite:"

	maxTxnRetries = 20
)

type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a badger database at path, or an in-memory one when
// path is empty.
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func bookKey(id string) []byte { return []byte(bookPrefix + id) }

func ratingKey(bookID, userID string) []byte {
	return []byte(ratingPrefix + bookID + ":" + userID)
}

func favouriteKey(userID, bookID string) []byte {
	return []byte(favouritePrefix + userID + ":" + bookID)
}

// update runs fn in a read-write transaction. Conflicts with concurrent
// transactions are retried with jittered exponential backoff.
func (s *BadgerStore) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Millisecond
	policy.MaxInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		err := s.db.Update(fn)
		if err == nil || errors.Is(err, badger.ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, maxTxnRetries), ctx))
}

func getJSON(txn *badger.Txn, key []byte, dest interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

func setJSON(txn *badger.Txn, key []byte, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return txn.Set(key, data)
}

// scanPrefix calls fn with the raw value of every key under prefix.
func scanPrefix(ctx context.Context, txn *badger.Txn, prefix []byte, fn func(key []byte, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		item := it.Item()
		key := item.KeyCopy(nil)
		if err := item.Value(func(val []byte) error { return fn(key, val) }); err != nil {
			return err
		}
	}
	return nil
}

func (s *BadgerStore) CreateBook(ctx context.Context, book *models.Book) error {
	if book == nil {
		return fmt.Errorf("book is nil")
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(bookKey(book.ID)); err == nil {
			return fmt.Errorf("book %s already exists", book.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, bookKey(book.ID), book)
	})
}

func (s *BadgerStore) GetBook(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, bookKey(id), &book)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

func (s *BadgerStore) ListBooks(ctx context.Context, query string) ([]models.Book, error) {
	books := make([]models.Book, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(ctx, txn, []byte(bookPrefix), func(_ []byte, val []byte) error {
			var b models.Book
			if err := json.Unmarshal(val, &b); err != nil {
				return err
			}
			if matchesQuery(&b, query) {
				books = append(books, b)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	sortNewestFirst(books)
	return books, nil
}

func (s *BadgerStore) DeleteBook(ctx context.Context, id string) error {
	err := s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(bookKey(id)); err != nil {
			return err
		}
		return txn.Delete(bookKey(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

func (s *BadgerStore) UpsertRating(ctx context.Context, userID, bookID string, value int) (bool, error) {
	var existed bool
	err := s.update(ctx, func(txn *badger.Txn) error {
		key := ratingKey(bookID, userID)
		_, err := txn.Get(key)
		switch {
		case err == nil:
			existed = true
		case errors.Is(err, badger.ErrKeyNotFound):
			existed = false
		default:
			return err
		}
		return setJSON(txn, key, models.Rating{
			UserID:    userID,
			BookID:    bookID,
			Rating:    value,
			UpdatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return false, fmt.Errorf("upsert rating: %w", err)
	}
	return existed, nil
}

func (s *BadgerStore) RatingTally(ctx context.Context, bookID string) (Tally, error) {
	tally := Tally{}
	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(ctx, txn, []byte(ratingPrefix+bookID+":"), func(_ []byte, val []byte) error {
			var r models.Rating
			if err := json.Unmarshal(val, &r); err != nil {
				return err
			}
			tally[r.Rating]++
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("tally ratings: %w", err)
	}
	return tally, nil
}

func (s *BadgerStore) ToggleFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	var present bool
	err := s.update(ctx, func(txn *badger.Txn) error {
		key := favouriteKey(userID, bookID)
		_, err := txn.Get(key)
		switch {
		case err == nil:
			present = false
			return txn.Delete(key)
		case errors.Is(err, badger.ErrKeyNotFound):
			present = true
			return setJSON(txn, key, models.Favourite{UserID: userID, BookID: bookID, CreatedAt: time.Now().UTC()})
		default:
			return err
		}
	})
	if err != nil {
		return false, fmt.Errorf("toggle favourite: %w", err)
	}
	return present, nil
}

func (s *BadgerStore) IsFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(favouriteKey(userID, bookID))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get favourite: %w", err)
	}
	return true, nil
}

func (s *BadgerStore) FavouriteBooks(ctx context.Context, userID string) ([]models.Book, error) {
	type entry struct {
		book      models.Book
		createdAt time.Time
	}
	entries := make([]entry, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		return scanPrefix(ctx, txn, []byte(favouritePrefix+userID+":"), func(_ []byte, val []byte) error {
			var f models.Favourite
			if err := json.Unmarshal(val, &f); err != nil {
				return err
			}
			var b models.Book
			err := getJSON(txn, bookKey(f.BookID), &b)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			entries = append(entries, entry{book: b, createdAt: f.CreatedAt})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].createdAt.After(entries[j].createdAt)
	})
	books := make([]models.Book, len(entries))
	for i, e := range entries {
		books[i] = e.book
	}
	return books, nil
}

func (s *BadgerStore) Ping(ctx context.Context) error {
	if s.db.IsClosed() {
		return fmt.Errorf("badger db closed")
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
