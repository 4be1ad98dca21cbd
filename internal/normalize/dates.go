package normalize

import (
	"errors"
	"strings"
	"time"
)

// dateLayouts are tried in order; first match wins.
var dateLayouts = []string{
	"2006-01-02T15:04:05Z07:00", // ISO 8601 with offset
	"2006-01-02T15:04:05",       // ISO 8601 without offset
	"2006-01-02",                // plain date
	"2006/01/02",                // slash separator
	"01/02/2006",                // US format
}

// isoFallbackLayouts cover ISO variants the primary list misses
// (space separator, minute precision, fractional seconds).
var isoFallbackLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ErrUnparseableDate is returned when no known layout matches.
var ErrUnparseableDate = errors.New("unparseable date")

// ParseDate parses a source-provided date string. Layouts are tried in a
// fixed order ending with a generic ISO fallback; an empty string never
// parses.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrUnparseableDate
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range isoFallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrUnparseableDate
}
