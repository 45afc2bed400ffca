package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/metrics"
)

// PayloadCache stores raw upstream bodies. Implementations must treat a miss
// as (nil, false, nil).
type PayloadCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// cachingFetcher short-circuits repeated fetches of the same payload, which
// matters when a sweep grades many props against one game.
type cachingFetcher struct {
	next    Fetcher
	cache   PayloadCache
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewCachingFetcher returns next unchanged when cache is nil.
func NewCachingFetcher(next Fetcher, cache PayloadCache, ttl time.Duration, logger *slog.Logger, recorder *metrics.Recorder) Fetcher {
	if cache == nil || next == nil {
		return next
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &cachingFetcher{next: next, cache: cache, ttl: ttl, logger: logger, metrics: recorder}
}

func (c *cachingFetcher) Name() string {
	return c.next.Name()
}

func (c *cachingFetcher) FetchScoreboard(ctx context.Context, q ScoreboardQuery) ([]byte, error) {
	key := CacheKey(c.next.Name(), "scoreboard", q.Key())
	return c.cached(ctx, key, func() ([]byte, error) {
		return c.next.FetchScoreboard(ctx, q)
	})
}

func (c *cachingFetcher) FetchBoxScore(ctx context.Context, league, gameID string) ([]byte, error) {
	key := CacheKey(c.next.Name(), "boxscore", league+":"+gameID)
	return c.cached(ctx, key, func() ([]byte, error) {
		return c.next.FetchBoxScore(ctx, league, gameID)
	})
}

func (c *cachingFetcher) cached(ctx context.Context, key string, fetch func() ([]byte, error)) ([]byte, error) {
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		logWithProvider(ctx, c.logger, slog.LevelWarn, c.next.Name(), "cache read failed", "key", key, "err", err)
	}
	if ok {
		c.metrics.RecordCacheLookup(c.next.Name(), true)
		return body, nil
	}
	c.metrics.RecordCacheLookup(c.next.Name(), false)

	body, err = fetch()
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
		logWithProvider(ctx, c.logger, slog.LevelWarn, c.next.Name(), "cache write failed", "key", key, "err", err)
	}
	return body, nil
}

// CacheKey formats the key under which a payload is cached.
func CacheKey(provider, kind, id string) string {
	return fmt.Sprintf("upstream:%s:%s:%s", provider, kind, id)
}
