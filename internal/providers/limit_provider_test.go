package providers

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimitedFetcherSpacesCalls(t *testing.T) {
	inner := &stubFetcher{body: []byte("{}")}
	rl := NewRateLimitedFetcher(inner, 100, 1, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := rl.FetchBoxScore(context.Background(), "nba", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	// burst of one at 100/s: the 2nd and 3rd calls each wait ~10ms.
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Fatalf("expected calls to be spaced, elapsed %s", elapsed)
	}
	if inner.Calls() != 3 {
		t.Fatalf("expected inner fetcher called 3 times, got %d", inner.Calls())
	}
}

func TestRateLimitedFetcherRespectsCanceledContext(t *testing.T) {
	inner := &stubFetcher{}
	rl := NewRateLimitedFetcher(inner, 0.001, 1, nil)
	// drain the single burst token
	_, _ = rl.FetchScoreboard(context.Background(), ScoreboardQuery{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := rl.FetchScoreboard(ctx, ScoreboardQuery{}); err == nil {
		t.Fatal("expected error on canceled context")
	}
	if inner.Calls() != 1 {
		t.Fatalf("expected inner fetcher not called after cancel, got %d", inner.Calls())
	}
}

func TestRateLimitedFetcherHandlesNilInner(t *testing.T) {
	rl := NewRateLimitedFetcher(nil, 1, 1, nil)

	_, err := rl.FetchBoxScore(context.Background(), "nba", "1")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if rl.Name() != "rate-limited" {
		t.Fatalf("unexpected name %q", rl.Name())
	}
}
