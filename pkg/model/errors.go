package model

import (
	"errors"
	"fmt"
)

// ErrNotFound signals a lookup by id that matched nothing. Wrap it with
// context: fmt.Errorf("account %q: %w", id, model.ErrNotFound).
var ErrNotFound = errors.New("not found")

// ValidationError rejects a write before any state changes. The transport
// layer maps it to 400 Bad Request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
