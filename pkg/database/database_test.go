package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columns(t *testing.T, table string) []string {
	t.Helper()
	rows, err := DB.Query(`SELECT name FROM pragma_table_info(?)`, table)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestInitDatabase_FreshSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bookhub.db")
	require.NoError(t, InitDatabase(path))
	defer Close()

	assert.Equal(t,
		[]string{"id", "title", "author", "description", "cover_file", "pdf_file", "added_by", "created_at"},
		columns(t, "books"),
	)
	assert.Equal(t,
		[]string{"user_id", "book_id", "rating", "revision", "updated_at"},
		columns(t, "ratings"),
	)
	assert.Equal(t, []string{"user_id", "book_id", "created_at"}, columns(t, "favourites"))
}

func TestInitDatabase_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookhub.db")
	require.NoError(t, InitDatabase(path))
	_, err := DB.Exec(`INSERT INTO books (id, title, author, description, pdf_file, added_by) VALUES ('b1', 't', 'a', 'd', 'b1.pdf', 'u1')`)
	require.NoError(t, err)
	require.NoError(t, Close())

	require.NoError(t, InitDatabase(path))
	defer Close()

	var pdf string
	require.NoError(t, DB.QueryRow(`SELECT pdf_file FROM books WHERE id = 'b1'`).Scan(&pdf))
	assert.Equal(t, "b1.pdf", pdf)
}

func TestInitDatabase_RatingRange(t *testing.T) {
	require.NoError(t, InitDatabase(filepath.Join(t.TempDir(), "bookhub.db")))
	defer Close()

	_, err := DB.Exec(`INSERT INTO ratings (user_id, book_id, rating) VALUES ('u', 'b', 6)`)
	assert.Error(t, err)
}
