package util

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxAmount caps a single receipt total or transaction amount.
var MaxAmount = decimal.NewFromInt(10_000_000_000)

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
}

var dateTimeLayouts = []string{
	time.DateTime,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ValidateAmount accepts zero and positive amounts below MaxAmount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("must not be negative, got %s", amount)
	}
	if amount.GreaterThanOrEqual(MaxAmount) {
		return fmt.Errorf("too large, got %s", amount)
	}
	return nil
}

// ParseDate parses a calendar date. Time-of-day, if present, is dropped and
// the result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ParseDateTime parses a timestamp and normalizes it to UTC. A bare date
// means midnight.
func ParseDateTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date-time is empty")
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q", s)
}
