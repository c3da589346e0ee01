package normalizer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("unrecognized date")

// DefaultDateLayouts is tried in order; the first layout that parses wins.
// Day-first layouts come before ISO so "05/01/2025" reads as 5 January.
// Single-digit layout elements also accept zero-padded input.
var DefaultDateLayouts = []string{
	"2/1/2006",
	"2006-1-2",
	"2-1-2006",
	"2/1/06",
	"2006/1/2",
	"2.1.2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
}

// ParseDate parses a date cell against layouts (DefaultDateLayouts when nil)
// and returns the calendar date at midnight UTC.
func ParseDate(raw string, layouts []string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if layouts == nil {
		layouts = DefaultDateLayouts
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
