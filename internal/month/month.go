// Package month implements the YYYY-MM calendar month token used to key
// budgets. Tokens are zero-padded, so lexicographic order equals calendar
// order.
package month

import (
	"fmt"
	"time"

	apperrors "fiscus/internal/errors"
)

const layout = "2006-01"

// Month is a calendar month in a specific year.
type Month struct {
	Year  int
	Month time.Month
}

// Parse parses a YYYY-MM token. The month part must be zero-padded and in
// 1-12; anything else fails with INVALID_MONTH_FORMAT.
func Parse(token string) (Month, error) {
	t, err := time.Parse(layout, token)
	if err != nil {
		return Month{}, apperrors.Wrap(apperrors.ErrInvalidMonthFormat, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// IsValid reports whether token is a well-formed YYYY-MM month token.
func IsValid(token string) bool {
	_, err := Parse(token)
	return err == nil
}

// FromTime returns the month containing t.
func FromTime(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String renders the month as a zero-padded YYYY-MM token.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Days returns the number of days in the month, leap-year aware.
func (m Month) Days() int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// After reports whether m is strictly later than other.
func (m Month) After(other Month) bool {
	if m.Year != other.Year {
		return m.Year > other.Year
	}
	return m.Month > other.Month
}

// Previous returns the calendar month before m.
func (m Month) Previous() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}
