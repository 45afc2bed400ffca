package formula

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/prop-grader/internal/domain/props"
	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
	"github.com/preston-bernstein/prop-grader/internal/failure"
	"github.com/preston-bernstein/prop-grader/internal/providers"
	"github.com/preston-bernstein/prop-grader/internal/timeutil"
)

// DefaultTimezone decides which calendar day an event's start time falls on
// when no explicit date is given.
const DefaultTimezone = "America/New_York"

// DataSource serves normalized data per league. The normalizer implements it.
type DataSource interface {
	Scoreboard(ctx context.Context, league, date string) (stats.Scoreboard, error)
	WeeklyScoreboard(ctx context.Context, league string, year, week, seasonType int) (stats.Scoreboard, error)
	BoxScore(ctx context.Context, league, gameID string) (stats.BoxScore, error)
}

// Request is everything an evaluator may read.
type Request struct {
	League   string
	Event    props.Event
	Params   json.RawMessage
	Source   DataSource
	Timezone string
}

type fetched[T any] struct {
	value T
	err   error
}

// session memoizes fetches for one evaluation so both sides of a comparison
// share a single scoreboard and box score.
type session struct {
	op    string
	req   Request
	ref   GameRef
	vocab stats.Vocabulary

	mu     sync.Mutex
	boards map[string]*fetched[stats.Scoreboard]
	box    *fetched[stats.BoxScore]
}

func newSession(op string, req Request, ref GameRef) *session {
	return &session{
		op:     op,
		req:    req,
		ref:    ref,
		vocab:  stats.VocabularyFor(req.League),
		boards: map[string]*fetched[stats.Scoreboard]{},
	}
}

func (s *session) gameID() string {
	return firstNonEmpty(s.ref.GameID, s.req.Event.UpstreamGameID)
}

func (s *session) date() string {
	if s.ref.Date != "" {
		return s.ref.Date
	}
	if s.req.Event.ScheduledAt.IsZero() {
		return ""
	}
	tz := s.req.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	return timeutil.LocalDate(s.req.Event.ScheduledAt, tz)
}

// boardSteps lists the scoreboards to try in order: the season week when one
// was given, then the event's date.
func (s *session) boardSteps() []string {
	var steps []string
	if s.ref.Weekly() {
		steps = append(steps, "weekly")
	}
	if s.date() != "" {
		steps = append(steps, "daily")
	}
	return steps
}

func (s *session) scoreboard(ctx context.Context, step string) (stats.Scoreboard, error) {
	s.mu.Lock()
	if f, ok := s.boards[step]; ok {
		s.mu.Unlock()
		return f.value, f.err
	}
	s.mu.Unlock()

	var f fetched[stats.Scoreboard]
	if step == "weekly" {
		f.value, f.err = s.req.Source.WeeklyScoreboard(ctx, s.req.League, s.ref.Year, s.ref.Week, s.ref.SeasonType)
	} else {
		f.value, f.err = s.req.Source.Scoreboard(ctx, s.req.League, s.date())
	}

	s.mu.Lock()
	s.boards[step] = &f
	s.mu.Unlock()
	return f.value, f.err
}

func (s *session) boxScore(ctx context.Context) (stats.BoxScore, error) {
	s.mu.Lock()
	if s.box != nil {
		defer s.mu.Unlock()
		return s.box.value, s.box.err
	}
	s.mu.Unlock()

	var f fetched[stats.BoxScore]
	id := s.gameID()
	if id == "" {
		var game stats.Game
		game, f.err = s.gameOnBoards(ctx, nil)
		id = game.ID
	}
	if f.err == nil {
		f.value, f.err = s.req.Source.BoxScore(ctx, s.req.League, id)
	}

	s.mu.Lock()
	s.box = &f
	s.mu.Unlock()
	return f.value, f.err
}

// prefetch warms the scoreboards and the box score concurrently when an
// evaluation is known to need both. Errors stay memoized for the chain.
func (s *session) prefetch(ctx context.Context, boards, box bool) {
	if !boards || !box || s.gameID() == "" {
		return
	}
	var g errgroup.Group
	for _, step := range s.boardSteps() {
		g.Go(func() error {
			_, _ = s.scoreboard(ctx, step)
			return nil
		})
	}
	g.Go(func() error {
		_, _ = s.boxScore(ctx)
		return nil
	})
	_ = g.Wait()
}

// chain tracks the first soft failure across fallback steps. Unsupported
// query shapes are skipped, upstream failures are remembered and reported only
// when no later step yields a value, anything else stops the chain.
type chain struct {
	first error
}

func (c *chain) soft(err error) (fatal error) {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, providers.ErrUnsupported):
		return nil
	case failure.Is(err, failure.KindUpstream):
		if c.first == nil {
			c.first = err
		}
		return nil
	default:
		return err
	}
}

func (c *chain) or(err error) error {
	if c.first != nil {
		return c.first
	}
	return err
}

// locate finds the prop's game on a scoreboard, by id when known, otherwise
// by any of the candidate teams.
func (s *session) locate(board stats.Scoreboard, teams []string) (stats.Game, bool) {
	if id := s.gameID(); id != "" {
		return board.Game(id)
	}
	candidates := append([]string{s.req.Event.HomeTeam, s.req.Event.AwayTeam}, teams...)
	for _, team := range candidates {
		if _, isSide := stats.ParseSide(team); isSide || strings.TrimSpace(team) == "" {
			continue
		}
		if g, ok := board.GameWithTeam(team); ok {
			return g, true
		}
	}
	return stats.Game{}, false
}

func (s *session) gameOnBoards(ctx context.Context, teams []string) (stats.Game, error) {
	var c chain
	for _, step := range s.boardSteps() {
		board, err := s.scoreboard(ctx, step)
		if err != nil {
			if fatal := c.soft(err); fatal != nil {
				return stats.Game{}, fatal
			}
			continue
		}
		if g, ok := s.locate(board, teams); ok {
			return g, nil
		}
	}
	return stats.Game{}, c.or(failure.DataNotReady(s.op, "game", "", "game not found on any scoreboard"))
}

// game resolves the prop's game: season week scoreboard, date scoreboard,
// then the box score header.
func (s *session) game(ctx context.Context, teams []string) (stats.Game, error) {
	g, err := s.gameOnBoards(ctx, teams)
	if err == nil {
		return g, nil
	}
	if !failure.Is(err, failure.KindDataNotReady) && !failure.Is(err, failure.KindUpstream) {
		return stats.Game{}, err
	}
	if s.gameID() == "" {
		return stats.Game{}, err
	}

	c := chain{}
	if failure.Is(err, failure.KindUpstream) {
		c.first = err
	}
	box, err := s.boxScore(ctx)
	if err != nil {
		if fatal := c.soft(err); fatal != nil {
			return stats.Game{}, fatal
		}
	} else if box.Game != nil {
		return *box.Game, nil
	}
	return stats.Game{}, c.or(failure.DataNotReady(s.op, "game "+s.gameID(), "", "game not found"))
}

// requireFinal resolves the prop's game and refuses to grade it until the
// game is final. preferBox reads the box score header first when the
// evaluation fetches the box score anyway.
func (s *session) requireFinal(ctx context.Context, teams []string, preferBox bool) (stats.Game, error) {
	if preferBox && s.gameID() != "" {
		if box, err := s.boxScore(ctx); err == nil && box.Game != nil {
			return s.final(*box.Game)
		}
	}
	g, err := s.game(ctx, teams)
	if err != nil {
		return stats.Game{}, err
	}
	return s.final(g)
}

func (s *session) final(g stats.Game) (stats.Game, error) {
	if !g.Final() {
		return g, failure.DataNotReady(s.op, "game "+g.ID, string(s.vocab.Score), fmt.Sprintf("game is not final (%s)", g.StatusLabel))
	}
	return g, nil
}

// teamAbbr turns "home"/"away" or a team id into an abbreviation using the
// event first and the box score header second.
func (s *session) teamAbbr(team string, box stats.BoxScore) string {
	if side, ok := stats.ParseSide(team); ok {
		fromEvent := s.req.Event.HomeTeam
		if side == stats.Away {
			fromEvent = s.req.Event.AwayTeam
		}
		if fromEvent != "" {
			return fromEvent
		}
		if box.Game != nil {
			return box.Game.Competitor(side).Abbreviation
		}
		return ""
	}
	if box.Game != nil {
		if side, ok := box.Game.SideOf(team); ok {
			if abbr := box.Game.Competitor(side).Abbreviation; abbr != "" {
				return abbr
			}
		}
	}
	return team
}

// teamValue walks the team fallback chain for one metric: scoreboard line
// score for the score metric, then the box score team block, then the sum of
// the team's player rows.
func (s *session) teamValue(ctx context.Context, team string, m stats.Metric) (float64, string, error) {
	var c chain
	side, isSide := stats.ParseSide(team)

	if m == s.vocab.Score {
		for _, step := range s.boardSteps() {
			board, err := s.scoreboard(ctx, step)
			if err != nil {
				if fatal := c.soft(err); fatal != nil {
					return 0, team, fatal
				}
				continue
			}
			g, ok := s.locate(board, []string{team})
			if !ok {
				continue
			}
			sd := side
			if !isSide {
				if sd, ok = g.SideOf(team); !ok {
					continue
				}
			}
			if v, ok := g.LineValue(sd, m, s.vocab.Score); ok {
				return v, firstNonEmpty(g.Competitor(sd).Abbreviation, team), nil
			}
		}
	}

	box, err := s.boxScore(ctx)
	if err != nil {
		if fatal := c.soft(err); fatal != nil {
			return 0, team, fatal
		}
		return 0, team, c.or(failure.DataNotReady(s.op, "team "+team, string(m), "metric not available"))
	}

	abbr := s.teamAbbr(team, box)
	if abbr == "" {
		return 0, team, failure.DataNotReady(s.op, "team "+team, string(m), "team not resolved for game")
	}
	if block, ok := box.Team(abbr); ok {
		if v, ok := block.Stats[m]; ok {
			return v, abbr, nil
		}
	}
	if sum, ok := stats.SumPlayers(s.vocab, abbr, box.Players); ok {
		if v, ok := sum.Stats[m]; ok {
			return v, abbr, nil
		}
	}
	return 0, abbr, c.or(failure.DataNotReady(s.op, "team "+abbr, string(m), "metric not available"))
}

// playerValue reads one metric from a player's box score row.
func (s *session) playerValue(ctx context.Context, subj Subject, m stats.Metric) (float64, string, error) {
	box, err := s.boxScore(ctx)
	if err != nil {
		return 0, subj.Player, err
	}
	if !box.Completeness.HasData() {
		return 0, subj.Player, failure.DataNotReady(s.op, "game "+box.GameID, string(m), "box score has no data yet")
	}
	team := ""
	if subj.Team != "" {
		team = s.teamAbbr(subj.Team, box)
	}
	p, ok := box.Player(subj.Player, team)
	if !ok {
		return 0, subj.Player, failure.DataNotReady(s.op, "player "+subj.Player, string(m), "player not in box score")
	}
	name := firstNonEmpty(p.Name, subj.Player)
	v, ok := p.Stats[m]
	if !ok {
		return 0, name, failure.DataNotReady(s.op, "player "+name, string(m), "metric not available")
	}
	return v, name, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func metricLabel(metrics []stats.Metric) string {
	parts := make([]string, len(metrics))
	for i, m := range metrics {
		parts[i] = string(m)
	}
	return strings.Join(parts, "+")
}
