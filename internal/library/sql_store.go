package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/binhbb2204/BookHub/pkg/models"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const bookColumns = `id, title, author, description, cover_file, pdf_file, added_by, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(row rowScanner) (*models.Book, error) {
	var b models.Book
	var cover, pdf sql.NullString

	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &cover, &pdf, &b.AddedBy, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.CoverFile = cover.String
	b.PDFFile = pdf.String
	return &b, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *SQLStore) CreateBook(ctx context.Context, book *models.Book) error {
	if book == nil {
		return fmt.Errorf("book is nil")
	}

	query := `
		INSERT INTO books (` + bookColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		nullable(book.CoverFile),
		nullable(book.PDFFile),
		book.AddedBy,
		book.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (s *SQLStore) GetBook(ctx context.Context, id string) (*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = ?`

	book, err := scanBook(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}
	return book, nil
}

// ListBooks matches q with matchesQuery, like the other drivers, so
// wildcards in q are literal and case folding covers non-ASCII titles.
func (s *SQLStore) ListBooks(ctx context.Context, query string) ([]models.Book, error) {
	books, err := s.queryBooks(ctx, `SELECT `+bookColumns+` FROM books ORDER BY created_at DESC`)
	if err != nil || query == "" {
		return books, err
	}

	matched := books[:0]
	for i := range books {
		if matchesQuery(&books[i], query) {
			matched = append(matched, books[i])
		}
	}
	return matched, nil
}

func (s *SQLStore) queryBooks(ctx context.Context, stmt string, args ...interface{}) ([]models.Book, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := make([]models.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return books, nil
}

func (s *SQLStore) DeleteBook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertRating relies on the (user_id, book_id) primary key: the first
// write inserts revision 0, every later one bumps it.
func (s *SQLStore) UpsertRating(ctx context.Context, userID, bookID string, value int) (bool, error) {
	query := `
		INSERT INTO ratings (user_id, book_id, rating, revision, updated_at)
		VALUES (?, ?, ?, 0, ?)
		ON CONFLICT(user_id, book_id) DO UPDATE SET
			rating = excluded.rating,
			revision = ratings.revision + 1,
			updated_at = excluded.updated_at
		RETURNING revision
	`

	var revision int
	err := s.db.QueryRowContext(ctx, query, userID, bookID, value, time.Now().UTC()).Scan(&revision)
	if err != nil {
		return false, fmt.Errorf("upsert rating: %w", err)
	}
	return revision > 0, nil
}

func (s *SQLStore) RatingTally(ctx context.Context, bookID string) (Tally, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rating, COUNT(*) FROM ratings WHERE book_id = ? GROUP BY rating`, bookID)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	tally := Tally{}
	for rows.Next() {
		var star, n int
		if err := rows.Scan(&star, &n); err != nil {
			return nil, fmt.Errorf("scan rating group: %w", err)
		}
		tally[star] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return tally, nil
}

// ToggleFavourite deletes the pair if present, otherwise inserts it, inside
// one write transaction so concurrent toggles serialize.
func (s *SQLStore) ToggleFavourite(ctx context.Context, userID, bookID string) (present bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin toggle: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `DELETE FROM favourites WHERE user_id = ? AND book_id = ?`, userID, bookID)
	if err != nil {
		return false, fmt.Errorf("delete favourite: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete favourite: %w", err)
	}

	if removed == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO favourites (user_id, book_id, created_at) VALUES (?, ?, ?) ON CONFLICT(user_id, book_id) DO NOTHING`,
			userID, bookID, time.Now().UTC(),
		)
		if err != nil {
			return false, fmt.Errorf("insert favourite: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle: %w", err)
	}
	return removed == 0, nil
}

func (s *SQLStore) IsFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM favourites WHERE user_id = ? AND book_id = ?)`
	if err := s.db.QueryRowContext(ctx, query, userID, bookID).Scan(&exists); err != nil {
		return false, fmt.Errorf("query favourite: %w", err)
	}
	return exists, nil
}

func (s *SQLStore) FavouriteBooks(ctx context.Context, userID string) ([]models.Book, error) {
	query := `
		SELECT b.id, b.title, b.author, b.description, b.cover_file, b.pdf_file, b.added_by, b.created_at
		FROM favourites f
		JOIN books b ON b.id = f.book_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC
	`
	return s.queryBooks(ctx, query, userID)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op: the connection belongs to pkg/database.
func (s *SQLStore) Close() error {
	return nil
}
