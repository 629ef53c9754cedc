package report

import (
	"fmt"
	"time"
)

// YearMonth is a calendar month bucket. Buckets are always taken in UTC.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the UTC calendar month t falls in.
func MonthOf(t time.Time) YearMonth {
	u := t.UTC()
	return YearMonth{Year: u.Year(), Month: u.Month()}
}

// Prior returns the month immediately before ym. Only the month and year
// fields are touched so day-of-month overflow cannot occur.
func (ym YearMonth) Prior() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// MarshalText renders the bucket as "2006-01".
func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

// PriorMonthKey resolves "last month" relative to ref, e.g. 2024-03-31 -> 2024-02.
func PriorMonthKey(ref time.Time) YearMonth {
	return MonthOf(ref).Prior()
}

// DayOf returns the UTC calendar day of t formatted as "2006-01-02".
func DayOf(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
