package util

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount_Valid(t *testing.T) {
	for _, s := range []string{"0", "0.01", "100.50", "9999999999.99"} {
		assert.NoError(t, ValidateAmount(decimal.RequireFromString(s)), s)
	}
}

func TestValidateAmount_Negative(t *testing.T) {
	for _, s := range []string{"-0.01", "-100"} {
		assert.Error(t, ValidateAmount(decimal.RequireFromString(s)), s)
	}
}

func TestValidateAmount_TooLarge(t *testing.T) {
	assert.Error(t, ValidateAmount(MaxAmount))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-01-15", "2024-01-15T10:30:00Z", "2024-01-15 23:59:59", "2024-01-15T08:00:00"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), "%s parsed as %s", s, got)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	testCases := []string{
		"",
		"2024/01/01",
		"01-01-2024",
		"not-a-date",
		"2024-13-01",
		"2024-01-32",
	}
	for _, s := range testCases {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestParseDateTime(t *testing.T) {
	got, err := ParseDateTime("2024-01-15 10:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), got)

	// offsets are normalized to UTC
	got, err = ParseDateTime("2024-02-01T01:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC), got)

	got, err = ParseDateTime("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDateTime("yesterday")
	assert.Error(t, err)
}
