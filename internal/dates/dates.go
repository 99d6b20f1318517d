package dates

import (
	"fmt"
	"strings"
	"time"
)

const (
	// CalendarLayout is the compact close-approach date used by the CAD catalog, e.g. "1900-Dec-27 01:30".
	CalendarLayout = "2006-Jan-02 15:04"

	// OutputLayout is the minute-precision form used in every human-readable and serialized output.
	OutputLayout = "2006-01-02 15:04"

	// DayLayout is the date-only form accepted by query filters.
	DayLayout = "2006-01-02"
)

// Parse converts a CAD calendar date into a UTC timestamp
func Parse(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty calendar date")
	}

	t, err := time.Parse(CalendarLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid calendar date %q, expected YYYY-Mon-DD hh:mm: %w", raw, err)
	}

	return t.UTC(), nil
}

// Format renders a timestamp without a seconds component
func Format(t time.Time) string {
	return t.UTC().Format(OutputLayout)
}

// ParseDay parses a YYYY-MM-DD filter date
func ParseDay(raw string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", raw, err)
	}
	return t, nil
}

// Day truncates a timestamp to its calendar day in UTC
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
