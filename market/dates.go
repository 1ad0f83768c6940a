package market

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of the DATE column in the historical rate file
// (day first, e.g. 02/01/2015).
const DateLayout = "02/01/2006"

// ISOLayout is used for dates in config files and reports.
const ISOLayout = "2006-01-02"

// Day truncates t to midnight UTC. All series lookups compare days, never
// instants.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses s with layout and normalizes it to a UTC day.
func ParseDate(layout, s string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Day(t), nil
}

// CalendarDays returns the number of whole calendar days from a to b.
// It is negative when b is before a.
func CalendarDays(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
