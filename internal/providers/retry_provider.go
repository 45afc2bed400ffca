package providers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/prop-grader/internal/logging"
	"github.com/preston-bernstein/prop-grader/internal/metrics"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
	maxBackoff           = 5 * time.Second
)

// retryingFetcher wraps a Fetcher with exponential backoff. Rate-limit
// responses wait for Retry-After instead of the computed delay.
type retryingFetcher struct {
	inner        Fetcher
	logger       *slog.Logger
	metrics      *metrics.Recorder
	providerName string
	maxAttempts  int
	newBackOff   func() backoff.BackOff
}

// NewRetryingFetcher wraps inner with retries. If maxAttempts/initial are <= 0, defaults are used.
func NewRetryingFetcher(inner Fetcher, logger *slog.Logger, recorder *metrics.Recorder, maxAttempts int, initial time.Duration) Fetcher {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if initial <= 0 {
		initial = defaultBackoff
	}
	name := "provider"
	if inner != nil {
		name = inner.Name()
	}
	return &retryingFetcher{
		inner:        inner,
		logger:       logger,
		metrics:      recorder,
		providerName: name,
		maxAttempts:  maxAttempts,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initial
			b.MaxInterval = maxBackoff
			b.MaxElapsedTime = 0
			return b
		},
	}
}

func (r *retryingFetcher) Name() string {
	return r.providerName
}

func (r *retryingFetcher) FetchScoreboard(ctx context.Context, q ScoreboardQuery) ([]byte, error) {
	return r.do(ctx, "scoreboard", func(ctx context.Context) ([]byte, error) {
		return r.inner.FetchScoreboard(ctx, q)
	})
}

func (r *retryingFetcher) FetchBoxScore(ctx context.Context, league, gameID string) ([]byte, error) {
	return r.do(ctx, "boxscore", func(ctx context.Context) ([]byte, error) {
		return r.inner.FetchBoxScore(ctx, league, gameID)
	})
}

func (r *retryingFetcher) do(ctx context.Context, kind string, call func(context.Context) ([]byte, error)) ([]byte, error) {
	if r.inner == nil {
		return nil, ErrProviderUnavailable
	}
	b := r.newBackOff()
	b.Reset()

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		start := time.Now()
		body, err := call(ctx)
		r.metrics.RecordProviderAttempt(r.providerName, time.Since(start), err)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if rlErr, ok := AsRateLimitError(err); ok {
			r.metrics.RecordRateLimit(r.providerName, rlErr.RetryAfter)
		}
		if permanent(err) {
			break
		}
		if attempt == r.maxAttempts {
			break
		}

		delay := r.computeDelay(err, b)
		if delay == backoff.Stop {
			break
		}
		r.logWarn(ctx, "provider fetch retry",
			"kind", kind,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"delay_ms", delay.Milliseconds(),
			"err", err,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	r.logWarn(ctx, "provider fetch failed", "kind", kind, "attempts", r.maxAttempts, "err", lastErr)
	return nil, lastErr
}

func permanent(err error) bool {
	if errors.Is(err, ErrUnsupported) {
		return true
	}
	upErr, ok := AsUpstreamError(err)
	return ok && upErr.Permanent()
}

// computeDelay prefers an upstream Retry-After over the backoff schedule.
func (r *retryingFetcher) computeDelay(err error, b backoff.BackOff) time.Duration {
	if rlErr, ok := AsRateLimitError(err); ok && rlErr.RetryAfter > 0 {
		return rlErr.RetryAfter
	}
	return b.NextBackOff()
}

func (r *retryingFetcher) logWarn(ctx context.Context, msg string, args ...any) {
	logWithProvider(ctx, logging.FromContext(ctx, r.logger), slog.LevelWarn, r.providerName, msg, args...)
}
