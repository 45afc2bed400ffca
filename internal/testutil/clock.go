package testutil

import (
	"testing"
	"time"
)

// FixedClock returns a clock pinned to the RFC3339 instant at.
func FixedClock(t testing.TB, at string) func() time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		t.Fatalf("bad clock instant %q: %v", at, err)
	}
	return func() time.Time { return ts }
}
