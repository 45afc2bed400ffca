package testutil

import (
	"context"
	"sync/atomic"

	"github.com/preston-bernstein/prop-grader/internal/providers"
)

// StubFetcher serves fixed payloads and counts calls.
type StubFetcher struct {
	NameVal    string
	Scoreboard []byte
	BoxScore   []byte
	Err        error
	Calls      atomic.Int32
}

func (f *StubFetcher) Name() string {
	if f.NameVal == "" {
		return "stub"
	}
	return f.NameVal
}

func (f *StubFetcher) FetchScoreboard(context.Context, providers.ScoreboardQuery) ([]byte, error) {
	f.Calls.Add(1)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Scoreboard, nil
}

func (f *StubFetcher) FetchBoxScore(context.Context, string, string) ([]byte, error) {
	f.Calls.Add(1)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.BoxScore, nil
}
