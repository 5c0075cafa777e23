package model

import (
	"strings"
	"time"

	"pair-tasks/internal/apperr"
)

// DayKey formats the calendar date of t as used in completion records.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ParseDay parses a YYYY-MM-DD date in loc.
func ParseDay(raw string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, apperr.Invalid("day", "expected YYYY-MM-DD, got %q", raw)
	}
	return d, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
