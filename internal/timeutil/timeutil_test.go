package timeutil

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate(" 2024-01-02 ")
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if got := FormatDate(parsed); got != "2024-01-02" {
		t.Fatalf("expected formatted date to round-trip, got %s", got)
	}
}

func TestFormatDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("test", -5*60*60)
	value := time.Date(2024, 1, 2, 23, 0, 0, 0, loc)
	if got := FormatDate(value); got != "2024-01-02" {
		t.Fatalf("expected formatted date, got %s", got)
	}
}

func TestCompactDate(t *testing.T) {
	got, err := CompactDate("2024-07-04")
	if err != nil || got != "20240704" {
		t.Fatalf("expected 20240704, got %q %v", got, err)
	}
	if _, err := CompactDate("07/04/2024"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestLocalDate(t *testing.T) {
	late := time.Date(2024, 7, 5, 2, 30, 0, 0, time.UTC)
	if got := LocalDate(late, "America/New_York"); got != "2024-07-04" {
		t.Fatalf("expected eastern calendar day, got %s", got)
	}
	if got := LocalDate(late, "Not/AZone"); got != "2024-07-05" {
		t.Fatalf("expected utc fallback, got %s", got)
	}
	if ResolveLocation("") != nil {
		t.Fatal("expected nil location for empty tz")
	}
}
