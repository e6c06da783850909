package library

import (
	"testing"

	"github.com/binhbb2204/BookHub/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRating_Valid(t *testing.T) {
	for raw, want := range map[string]int{"1": 1, "3": 3, "5": 5, `"4"`: 4, `"2"`: 2} {
		got, err := ParseRating(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseRating_Invalid(t *testing.T) {
	for _, raw := range []string{"0", "6", `"3.5"`, "3.5", "1.5", "4.0", `"abc"`, "abc", "", `""`, "-1", "10", " 4", "4\n", "null", "true", `"`} {
		_, err := ParseRating(raw)
		assert.ErrorIs(t, err, ErrInvalidRatingValue, "raw=%q", raw)
	}
}

func TestValidateID(t *testing.T) {
	assert.True(t, ValidateID(NewID()))
	assert.True(t, ValidateID("6f1c1e9e-8c53-4b2c-9a4d-2b0c7f3e8a11"))

	for _, id := range []string{"", "abc", "64b7f0c2e4b0a1a2b3c4d5e6", "{6f1c1e9e-8c53-4b2c-9a4d-2b0c7f3e8a11}", "6f1c1e9e-8c53-4b2c-9a4d-2b0c7f3e8a1z"} {
		assert.False(t, ValidateID(id), id)
	}
}

func TestValidateNewBook(t *testing.T) {
	tests := []struct {
		name string
		req  models.AddBookRequest
		msg  string
	}{
		{"missing title", models.AddBookRequest{Author: "a", Description: "d"}, "Title is missing"},
		{"blank author", models.AddBookRequest{Title: "t", Author: "  ", Description: "d"}, "Author is missing"},
		{"missing description", models.AddBookRequest{Title: "t", Author: "a"}, "Description is missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateNewBook(&tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.msg, err.Error())
		})
	}

	ok := models.AddBookRequest{Title: " Dune ", Author: "Herbert", Description: "Spice"}
	require.NoError(t, validateNewBook(&ok))
	assert.Equal(t, "Dune", ok.Title)
}
