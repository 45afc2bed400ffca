package timeutil

import (
	"strings"
	"time"
)

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// CompactLayout is the YYYYMMDD form some upstream APIs expect.
const CompactLayout = "20060102"

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CompactDate rewrites a YYYY-MM-DD date as YYYYMMDD.
func CompactDate(value string) (string, error) {
	day, err := ParseDate(value)
	if err != nil {
		return "", err
	}
	return day.Format(CompactLayout), nil
}

// ResolveLocation returns a location for a tz string, or nil if invalid.
func ResolveLocation(tz string) *time.Location {
	if tz == "" {
		return nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil
	}
	return loc
}

// LocalDate formats t as YYYY-MM-DD in tz, falling back to UTC.
func LocalDate(t time.Time, tz string) string {
	loc := ResolveLocation(tz)
	if loc == nil {
		loc = time.UTC
	}
	return FormatDate(t.In(loc))
}
