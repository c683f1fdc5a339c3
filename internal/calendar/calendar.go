// Package calendar implements the date arithmetic used by bill due dates.
//
// Month arithmetic follows normalized calendar semantics: adding one month to
// January 31st yields the 31st of February, which normalizes into March.
// Multi-month steps are always chained one month at a time.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the wire and storage format of calendar dates.
const Layout = "2006-01-02"

// Parse parses a YYYY-MM-DD date as a UTC midnight.
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ParseOptional parses s, returning nil for the empty string.
func ParseOptional(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Format renders t as YYYY-MM-DD in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// FormatOptional renders t, or the empty string for nil.
func FormatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonth moves t one calendar month forward, normalizing day overflow.
func AddMonth(t time.Time) time.Time {
	return t.AddDate(0, 1, 0)
}

// AddMonths applies AddMonth n times. The result can differ from a single
// n-month step when the day of month overflows.
func AddMonths(t time.Time, n int) time.Time {
	for i := 0; i < n; i++ {
		t = AddMonth(t)
	}
	return t
}

// AddMonthOptional is AddMonth for optional dates.
func AddMonthOptional(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	next := AddMonth(*t)
	return &next
}
