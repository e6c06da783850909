package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// GenerateID returns a URL-safe random id of the given length.
func GenerateID(length int) (string, error) {
	return gonanoid.New(length)
}
