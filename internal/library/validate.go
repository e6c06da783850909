package library

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/binhbb2204/BookHub/pkg/models"
	"github.com/google/uuid"
)

var validRating = regexp.MustCompile(`^[1-5]$`)

// ValidateID accepts only canonical UUID strings.
func ValidateID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func NewID() string {
	return uuid.NewString()
}

// ParseRating accepts a rating given as a bare JSON number or a JSON
// string and returns it when it is exactly one of 1..5. "4.0", " 4" and
// "4.5" are all rejected.
func ParseRating(raw string) (int, error) {
	s := raw
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	if !validRating.MatchString(s) {
		return 0, ErrInvalidRatingValue
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidRatingValue
	}
	return v, nil
}

func validateNewBook(req *models.AddBookRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	req.Description = strings.TrimSpace(req.Description)

	switch {
	case req.Title == "":
		return Validation("Title is missing")
	case req.Author == "":
		return Validation("Author is missing")
	case req.Description == "":
		return Validation("Description is missing")
	}
	return nil
}
