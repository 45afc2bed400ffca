package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
	"github.com/preston-bernstein/prop-grader/internal/failure"
	"github.com/preston-bernstein/prop-grader/internal/logging"
	"github.com/preston-bernstein/prop-grader/internal/providers"
)

// ScoreboardAdapter turns one provider's scoreboard payload into games.
// Adapters never fail: malformed input yields an empty scoreboard, which the
// Service reports as an upstream failure.
type ScoreboardAdapter interface {
	NormalizeScoreboard(raw []byte, league string) stats.Scoreboard
}

// BoxScoreAdapter turns one provider's game detail payload into a box score.
type BoxScoreAdapter interface {
	NormalizeBoxScore(raw []byte, league, gameID string) stats.BoxScore
}

// Family pairs a fetcher with the adapters that understand its payloads.
type Family struct {
	Fetcher     providers.Fetcher
	Scoreboards ScoreboardAdapter
	BoxScores   BoxScoreAdapter
}

// Service resolves a league to a provider family, fetches the raw payload and
// runs the matching adapter.
type Service struct {
	mu       sync.RWMutex
	families map[string]Family
	routes   map[string]string
	fallback string
	logger   *slog.Logger
}

// NewService constructs an empty Service. fallback names the family used for
// leagues without an explicit route; empty disables the fallback.
func NewService(fallback string, logger *slog.Logger) *Service {
	return &Service{
		families: map[string]Family{},
		routes:   map[string]string{},
		fallback: strings.ToLower(fallback),
		logger:   logger,
	}
}

// Register adds or replaces a provider family.
func (s *Service) Register(name string, f Family) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.families[strings.ToLower(name)] = f
}

// Route sends a league to a registered family.
func (s *Service) Route(league, family string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[normalizeLeague(league)] = strings.ToLower(family)
}

// Supports reports whether a league resolves to a registered family.
func (s *Service) Supports(league string) bool {
	_, _, err := s.resolve(league)
	return err == nil
}

// Scoreboard fetches and normalizes the games for a league on a date.
func (s *Service) Scoreboard(ctx context.Context, league, date string) (stats.Scoreboard, error) {
	return s.scoreboard(ctx, providers.ScoreboardQuery{League: normalizeLeague(league), Date: date})
}

// WeeklyScoreboard fetches games for a season week.
func (s *Service) WeeklyScoreboard(ctx context.Context, league string, year, week, seasonType int) (stats.Scoreboard, error) {
	q := providers.ScoreboardQuery{League: normalizeLeague(league), Year: year, Week: week, SeasonType: seasonType}
	if !q.Weekly() {
		return stats.Scoreboard{}, failure.Validation("normalize.WeeklyScoreboard", "year and week are required")
	}
	return s.scoreboard(ctx, q)
}

func (s *Service) scoreboard(ctx context.Context, q providers.ScoreboardQuery) (stats.Scoreboard, error) {
	const op = "normalize.Scoreboard"
	name, fam, err := s.resolve(q.League)
	if err != nil {
		return stats.Scoreboard{}, err
	}
	if fam.Scoreboards == nil {
		return stats.Scoreboard{}, unsupported(op, name, providers.ErrUnsupported)
	}
	raw, err := fam.Fetcher.FetchScoreboard(ctx, q)
	if err != nil {
		return stats.Scoreboard{}, fetchFailure(op, name, err)
	}

	board := fam.Scoreboards.NormalizeScoreboard(raw, q.League)
	s.logOutcome(ctx, "scoreboard normalized", name, q.League, board.Completeness, len(board.Games), logging.FieldDate, q.Key())
	if err := checkBody(op, name, board.Completeness, raw); err != nil {
		return stats.Scoreboard{}, err
	}
	return board, nil
}

// BoxScore fetches and normalizes the detail for one game.
func (s *Service) BoxScore(ctx context.Context, league, gameID string) (stats.BoxScore, error) {
	const op = "normalize.BoxScore"
	league = normalizeLeague(league)
	if strings.TrimSpace(gameID) == "" {
		return stats.BoxScore{}, failure.Validation(op, "game id is required")
	}
	name, fam, err := s.resolve(league)
	if err != nil {
		return stats.BoxScore{}, err
	}
	if fam.BoxScores == nil {
		return stats.BoxScore{}, unsupported(op, name, providers.ErrUnsupported)
	}
	raw, err := fam.Fetcher.FetchBoxScore(ctx, league, gameID)
	if err != nil {
		return stats.BoxScore{}, fetchFailure(op, name, err)
	}

	box := fam.BoxScores.NormalizeBoxScore(raw, league, gameID)
	s.logOutcome(ctx, "box score normalized", name, league, box.Completeness, len(box.Players), logging.FieldGameID, gameID)
	if err := checkBody(op, name, box.Completeness, raw); err != nil {
		return stats.BoxScore{}, err
	}
	return box, nil
}

func (s *Service) resolve(league string) (string, Family, error) {
	league = normalizeLeague(league)
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.routes[league]
	if !ok {
		name = s.fallback
	}
	fam, ok := s.families[name]
	if !ok || fam.Fetcher == nil {
		return "", Family{}, failure.Validation("normalize.resolve", "no provider configured for league %q", league)
	}
	return name, fam, nil
}

func (s *Service) logOutcome(ctx context.Context, msg, provider, league string, c stats.Completeness, count int, extra ...any) {
	logger := logging.FromContext(ctx, s.logger)
	if logger == nil {
		return
	}
	args := append([]any{
		logging.FieldProvider, provider,
		logging.FieldLeague, league,
		"completeness", string(c),
		logging.FieldCount, count,
	}, extra...)
	if c == stats.Empty {
		logger.Warn(msg, args...)
		return
	}
	logger.Debug(msg, args...)
}

// fetchFailure maps a provider error onto the failure taxonomy. A query shape
// the provider cannot serve is a validation problem, everything else is
// upstream.
func fetchFailure(op, provider string, err error) error {
	if errors.Is(err, providers.ErrUnsupported) {
		return unsupported(op, provider, err)
	}
	return failure.Upstream(op, fmt.Errorf("%s: %w", provider, err))
}

// checkBody separates "nothing published yet" from a body that could not be
// read at all. Only the second is an upstream failure.
func checkBody(op, provider string, c stats.Completeness, raw []byte) error {
	if c.HasData() || json.Valid(raw) {
		return nil
	}
	return failure.Upstream(op, fmt.Errorf("%s: %w", provider, ErrMalformedBody))
}

// ErrMalformedBody marks a provider response that is not valid JSON.
var ErrMalformedBody = errors.New("malformed response body")

func unsupported(op, provider string, err error) error {
	return &failure.Error{
		Kind:   failure.KindValidation,
		Op:     op,
		Entity: provider,
		Msg:    "query not supported by provider",
		Err:    err,
	}
}

func normalizeLeague(league string) string {
	return strings.ToLower(strings.TrimSpace(league))
}
