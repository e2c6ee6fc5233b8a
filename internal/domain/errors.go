package domain

import (
	"errors"
	"sort"
	"strings"
)

// Error taxonomy shared by the store, app and api layers. Only the api layer
// translates these into HTTP status codes.
var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrInvalidPlan           = errors.New("invalid or inactive subscription plan")
	ErrInvalidCursor         = errors.New("invalid cursor format")
	ErrUnauthorized          = errors.New("invalid credentials")
	ErrConflict              = errors.New("already exists")
	ErrSubscriptionCancelled = errors.New("subscription is cancelled")
	ErrRateLimited           = errors.New("too many attempts")
)

// ValidationError reports per-field problems with an input. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Messages(), "; ")
}

// Is makes errors.Is(err, ErrValidation) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Messages returns "field: message" entries sorted by field name.
func (e *ValidationError) Messages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+": "+e.Fields[k])
	}
	return out
}

// ConflictError reports a uniqueness clash on a single field. It matches
// ErrConflict under errors.Is.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
