package providers

import (
	"context"
	"fmt"
)

// ScoreboardQuery selects a scoreboard either by date (YYYY-MM-DD) or by
// season year and week for leagues that schedule weekly.
type ScoreboardQuery struct {
	League     string
	Date       string
	Year       int
	Week       int
	SeasonType int
}

// Weekly reports whether the query targets a year+week scoreboard.
func (q ScoreboardQuery) Weekly() bool {
	return q.Year > 0 && q.Week > 0
}

// Key renders a stable identifier for caching and logging.
func (q ScoreboardQuery) Key() string {
	if q.Weekly() {
		return fmt.Sprintf("%s:%d:w%d:s%d", q.League, q.Year, q.Week, q.SeasonType)
	}
	return fmt.Sprintf("%s:%s", q.League, q.Date)
}

// Fetcher retrieves raw provider payloads. Normalization happens in the
// adapters, so wrappers (retry, rate limit, cache) stay payload-agnostic.
type Fetcher interface {
	Name() string
	FetchScoreboard(ctx context.Context, q ScoreboardQuery) ([]byte, error)
	FetchBoxScore(ctx context.Context, league, gameID string) ([]byte, error)
}
