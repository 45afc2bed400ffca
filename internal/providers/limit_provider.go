package providers

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"
)

// rateLimitedFetcher wraps a Fetcher with a token bucket shared by every
// call to the same provider, so concurrent gradings stay inside quota.
type rateLimitedFetcher struct {
	next    Fetcher
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewRateLimitedFetcher allows perSecond calls with the given burst. Calls
// block until a token is available or ctx is done.
func NewRateLimitedFetcher(next Fetcher, perSecond float64, burst int, logger *slog.Logger) Fetcher {
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimitedFetcher{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:  logger,
	}
}

func (p *rateLimitedFetcher) Name() string {
	if p.next == nil {
		return "rate-limited"
	}
	return p.next.Name()
}

func (p *rateLimitedFetcher) FetchScoreboard(ctx context.Context, q ScoreboardQuery) ([]byte, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.next.FetchScoreboard(ctx, q)
}

func (p *rateLimitedFetcher) FetchBoxScore(ctx context.Context, league, gameID string) ([]byte, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.next.FetchBoxScore(ctx, league, gameID)
}

func (p *rateLimitedFetcher) wait(ctx context.Context) error {
	if p.next == nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, "rate-limited", "provider unavailable")
		return ErrProviderUnavailable
	}
	if err := p.limiter.Wait(ctx); err != nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, p.next.Name(), "rate-limited fetch canceled", "err", err)
		return err
	}
	return nil
}
