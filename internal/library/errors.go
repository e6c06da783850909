package library

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalidIdentifier  Code = "INVALID_IDENTIFIER"
	CodeInvalidRatingValue Code = "INVALID_RATING_VALUE"
	CodeValidation         Code = "VALIDATION"
	CodeNotFound           Code = "NOT_FOUND"
	CodeForbidden          Code = "FORBIDDEN"
	CodeAggregationFailure Code = "AGGREGATION_FAILURE"
)

// Error is a library failure the request layer can map to a status code.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrInvalidIdentifier  = &Error{Code: CodeInvalidIdentifier, Message: "invalid identifier"}
	ErrInvalidRatingValue = &Error{Code: CodeInvalidRatingValue, Message: "Invalid Rating"}
	ErrValidation         = &Error{Code: CodeValidation, Message: "validation error"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "not found"}
	ErrForbidden          = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrAggregationFailure = &Error{Code: CodeAggregationFailure, Message: "statistics computation failed"}
)

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func InvalidIdentifier(msg string) *Error { return newError(CodeInvalidIdentifier, msg) }
func Validation(msg string) *Error        { return newError(CodeValidation, msg) }
func NotFound(msg string) *Error          { return newError(CodeNotFound, msg) }
func Forbidden(msg string) *Error         { return newError(CodeForbidden, msg) }

func aggregationFailure(msg string, cause error) *Error {
	return &Error{Code: CodeAggregationFailure, Message: msg, cause: cause}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
