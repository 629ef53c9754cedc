package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidation marks malformed or missing input. The concrete error is a *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the entity exists but belongs to another user.
	ErrUnauthorized = errors.New("not owned by caller")
	// ErrDataUnavailable wraps storage failures. Transient, never retried here.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrNoConversionRate is returned when a currency has no conversion factor.
	ErrNoConversionRate = errors.New("no conversion rate")
)

// ValidationError lists problems per input field, e.g. "expenses[0].amount".
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, msg string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// InvalidField builds a single-field validation error.
func InvalidField(field, msg string) error {
	ve := newValidationError()
	ve.Add(field, msg)
	return ve
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDataUnavailable, err)
}
