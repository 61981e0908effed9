package core

import (
	"fmt"
	"time"
)

// Month identifies a calendar month. All statement windows and installment
// due dates are anchored to day 1 of a month, so the type normalizes away
// the day entirely. The zero value is January of year 0 and fails Validate.
type Month struct {
	year  int
	month time.Month
}

// NewMonth builds a Month. The month number is normalized the way
// time.Date normalizes it, so NewMonth(2024, 13) is January 2025.
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{year: t.Year(), month: t.Month()}
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{year: t.Year(), month: t.Month()}
}

// ParseMonth parses the "YYYY-MM" form used by month inputs.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, ErrInvalidDate)
	}
	return MonthOf(t), nil
}

// AddMonths returns the month n calendar months after m (n may be
// negative). Year rollover follows the calendar: 2024-11 + 3 = 2025-02.
func (m Month) AddMonths(n int) Month {
	return NewMonth(m.year, m.month+time.Month(n))
}

// Next returns the following month. A statement window for m is
// [m.Time(), m.Next().Time()).
func (m Month) Next() Month { return m.AddMonths(1) }

// Time returns day 1 of the month at midnight UTC.
func (m Month) Time() time.Time {
	return time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the month window,
// start inclusive, end exclusive.
func (m Month) Contains(t time.Time) bool {
	return !t.Before(m.Time()) && t.Before(m.Next().Time())
}

// Before reports whether m precedes o.
func (m Month) Before(o Month) bool {
	if m.year != o.year {
		return m.year < o.year
	}
	return m.month < o.month
}

// Equal reports whether m and o are the same calendar month.
func (m Month) Equal(o Month) bool {
	return m.year == o.year && m.month == o.month
}

// Year returns the calendar year.
func (m Month) Year() int { return m.year }

// Month returns the month within the year.
func (m Month) Month() time.Month { return m.month }

// String renders the "YYYY-MM" form.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.year, int(m.month))
}

// IsZero reports whether m is the zero value.
func (m Month) IsZero() bool { return m.year == 0 && m.month == 0 }

// Validate rejects the zero value and months outside a sane range.
func (m Month) Validate() error {
	if m.month < time.January || m.month > time.December {
		return ErrInvalidDate
	}
	if m.year < 1900 || m.year > 3000 {
		return ErrInvalidDate
	}
	return nil
}
