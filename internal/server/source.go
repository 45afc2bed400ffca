package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/cache"
	"github.com/preston-bernstein/prop-grader/internal/config"
	"github.com/preston-bernstein/prop-grader/internal/metrics"
	"github.com/preston-bernstein/prop-grader/internal/normalize"
	"github.com/preston-bernstein/prop-grader/internal/providers"
	"github.com/preston-bernstein/prop-grader/internal/providers/balldontlie"
	"github.com/preston-bernstein/prop-grader/internal/providers/espn"
)

const (
	cacheKeyPrefix   = "prop-grader:"
	cacheDialTimeout = 3 * time.Second
)

// sourceFactory assembles provider families with shared wrappers
// (payload cache, retry, rate limit) and routes leagues to them.
type sourceFactory struct {
	cfg      config.Config
	payloads providers.PayloadCache
	logger   *slog.Logger
	metrics  *metrics.Recorder
}

func newSourceFactory(cfg config.Config, payloads providers.PayloadCache, logger *slog.Logger, recorder *metrics.Recorder) sourceFactory {
	return sourceFactory{cfg: cfg, payloads: payloads, logger: logger, metrics: recorder}
}

func (f sourceFactory) build() *normalize.Service {
	pc := f.cfg.Providers
	src := normalize.NewService(pc.Fallback, f.logger)

	espnClient := espn.NewClient(espn.Config{
		BaseURL:    pc.ESPN.BaseURL,
		SportPaths: pc.ESPN.SportPaths,
		Headers:    pc.ESPN.Headers,
	})
	src.Register(config.FamilyESPN, normalize.Family{
		Fetcher:     f.wrap(espnClient),
		Scoreboards: espn.ScoreboardAdapter{},
		BoxScores:   espn.BoxScoreAdapter{},
	})

	if pc.Balldontlie.Enabled {
		bdl := balldontlie.NewClient(balldontlie.Config{
			BaseURL:  pc.Balldontlie.BaseURL,
			APIKey:   pc.Balldontlie.APIKey,
			Timezone: f.cfg.Timezone,
			MaxPages: pc.Balldontlie.MaxPages,
		})
		src.Register(config.FamilyBalldontlie, normalize.Family{
			Fetcher:     f.wrap(bdl),
			Scoreboards: balldontlie.ScoreboardAdapter{},
			BoxScores:   balldontlie.BoxScoreAdapter{},
		})
	}

	for league, family := range pc.Routes {
		src.Route(league, family)
	}
	return src
}

// wrap orders the wrappers so a cache hit costs no limiter token and every
// retry attempt waits its turn on the limiter.
func (f sourceFactory) wrap(base providers.Fetcher) providers.Fetcher {
	up := f.cfg.Upstream
	limited := providers.NewRateLimitedFetcher(base, up.RatePerSecond, up.Burst, f.logger)
	retrying := providers.NewRetryingFetcher(limited, f.logger, f.metrics, up.RetryAttempts, up.RetryInitial)
	return providers.NewCachingFetcher(retrying, f.payloads, up.CacheTTL, f.logger, f.metrics)
}

// openPayloadCache connects to Redis when configured. The cache is an
// optimization, so a dead Redis only costs a warning.
func openPayloadCache(ctx context.Context, cfg config.Config, logger *slog.Logger) *cache.RedisCache {
	if cfg.Upstream.RedisURL == "" {
		return nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, cacheDialTimeout)
	defer cancel()

	rc, err := cache.Open(dialCtx, cfg.Upstream.RedisURL, cacheKeyPrefix)
	if err != nil {
		if logger != nil {
			logger.Warn("payload cache unavailable, continuing without it", "error", err)
		}
		return nil
	}
	return rc
}
