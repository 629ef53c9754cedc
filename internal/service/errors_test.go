package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Is(t *testing.T) {
	err := fmt.Errorf("create: %w", InvalidField("total", "is required"))

	assert.ErrorIs(t, err, ErrValidation)
	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "is required", ve.Fields["total"])
}

func TestValidationError_FirstMessageWins(t *testing.T) {
	ve := newValidationError()
	ve.Add("date", "is required")
	ve.Add("date", "must be a valid date")
	assert.Equal(t, "is required", ve.Fields["date"])
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	ve := newValidationError()
	ve.Add("store", "is required")
	ve.Add("date", "is required")
	assert.Equal(t, "validation failed: date is required; store is required", ve.Error())
}

func TestUnavailable_WrapsBoth(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := unavailable("load receipt", cause)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.ErrorIs(t, err, cause)
}
