package formula

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/preston-bernstein/prop-grader/internal/domain/props"
	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
	"github.com/preston-bernstein/prop-grader/internal/failure"
)

// Evaluator computes a verdict for one formula kind. Implementations decode
// and validate their params before touching the data source.
type Evaluator interface {
	Kind() Kind
	Validate(req Request) error
	Evaluate(ctx context.Context, req Request) (props.Verdict, error)
}

// WhoWins grades by the final line-score total.
type WhoWins struct{}

func (WhoWins) Kind() Kind { return KindWhoWins }

func (e WhoWins) Validate(req Request) error {
	_, err := e.params(req)
	return err
}

func (WhoWins) params(req Request) (WhoWinsParams, error) {
	const op = "formula.who_wins"
	var p WhoWinsParams
	if err := decodeParams(op, req.Params, &p); err != nil {
		return p, err
	}
	if err := p.Validate(); err != nil {
		return p, failure.Validation(op, "%v", err)
	}
	return p, nil
}

func (e WhoWins) Evaluate(ctx context.Context, req Request) (props.Verdict, error) {
	const op = "formula.who_wins"
	p, err := e.params(req)
	if err != nil {
		return props.Verdict{}, err
	}

	s := newSession(op, req, p.GameRef)
	game, err := s.requireFinal(ctx, []string{p.SideA, p.SideB}, false)
	if err != nil {
		return props.Verdict{}, err
	}
	home, okHome := game.Total(stats.Home)
	away, okAway := game.Total(stats.Away)
	if !okHome || !okAway {
		return props.Verdict{}, failure.DataNotReady(op, "game "+game.ID, string(s.vocab.Score), "final score not available")
	}

	sideA, ok := resolveGameSide(game, p.SideA)
	if !ok {
		return props.Verdict{}, failure.Validation(op, "sideA %q is not a team in game %s", p.SideA, game.ID)
	}
	sideB := opposite(sideA)
	if p.SideB != "" {
		if sideB, ok = resolveGameSide(game, p.SideB); !ok || sideB == sideA {
			return props.Verdict{}, failure.Validation(op, "sideB %q must name the other team in game %s", p.SideB, game.ID)
		}
	}

	winner := props.WinnerPush
	switch {
	case home > away && sideA == stats.Home, away > home && sideA == stats.Away:
		winner = props.WinnerA
	case home != away:
		winner = props.WinnerB
	}
	text := fmt.Sprintf("%s %s - %s %s",
		firstNonEmpty(game.Away.Abbreviation, "AWAY"), stats.FormatNumber(away),
		firstNonEmpty(game.Home.Abbreviation, "HOME"), stats.FormatNumber(home))
	return props.Verdict{Winner: winner, ResultText: text}, nil
}

func resolveGameSide(g stats.Game, ref string) (stats.Side, bool) {
	if side, ok := stats.ParseSide(ref); ok {
		return side, true
	}
	return g.SideOf(ref)
}

func opposite(side stats.Side) stats.Side {
	if side == stats.Home {
		return stats.Away
	}
	return stats.Home
}

// overUnder backs every over/under kind. fixed pins the entity for the
// player_/team_ variants; stat_over_under reads it from params.
type overUnder struct {
	kind  Kind
	fixed entityKind
	multi bool
}

func (e overUnder) Kind() Kind { return e.kind }

func (e overUnder) Validate(req Request) error {
	_, _, err := e.params(req)
	return err
}

func (e overUnder) params(req Request) (OverUnderParams, entityKind, error) {
	op := "formula." + string(e.kind)
	var p OverUnderParams
	if err := decodeParams(op, req.Params, &p); err != nil {
		return p, "", err
	}
	entity := e.fixed
	if entity == "" {
		entity = p.entity()
	}
	if err := p.Validate(e.multi, entity); err != nil {
		return p, "", failure.Validation(op, "%v", err)
	}
	return p, entity, nil
}

func (e overUnder) Evaluate(ctx context.Context, req Request) (props.Verdict, error) {
	op := "formula." + string(e.kind)
	p, entity, err := e.params(req)
	if err != nil {
		return props.Verdict{}, err
	}

	s := newSession(op, req, p.GameRef)
	metrics := resolveMetrics(s.vocab, p.Metric, p.Metrics, e.multi)
	if entity == entityTeam {
		s.prefetch(ctx, needsBoards(s, metrics), needsBox(s, metrics))
	}
	if _, err := s.requireFinal(ctx, []string{p.Team}, entity == entityPlayer || needsBox(s, metrics)); err != nil {
		return props.Verdict{}, err
	}
	total, label, err := s.sum(ctx, entity, p.Subject, metrics)
	if err != nil {
		return props.Verdict{}, err
	}

	winner := decideOverUnder(total, p.SideA, p.SideB)
	text := fmt.Sprintf("%s %s: %s (A %s, B %s)", label, metricLabel(metrics), total.String(), p.SideA, p.SideB)
	return props.Verdict{Winner: winner, ResultText: text}, nil
}

// headToHead backs every head-to-head kind.
type headToHead struct {
	kind   Kind
	entity entityKind
	multi  bool
}

func (e headToHead) Kind() Kind { return e.kind }

func (e headToHead) Validate(req Request) error {
	_, err := e.params(req)
	return err
}

func (e headToHead) params(req Request) (HeadToHeadParams, error) {
	op := "formula." + string(e.kind)
	var p HeadToHeadParams
	if err := decodeParams(op, req.Params, &p); err != nil {
		return p, err
	}
	if err := p.Validate(e.multi, e.entity); err != nil {
		return p, failure.Validation(op, "%v", err)
	}
	return p, nil
}

func (e headToHead) Evaluate(ctx context.Context, req Request) (props.Verdict, error) {
	op := "formula." + string(e.kind)
	p, err := e.params(req)
	if err != nil {
		return props.Verdict{}, err
	}

	s := newSession(op, req, p.GameRef)
	metrics := resolveMetrics(s.vocab, p.Metric, p.Metrics, e.multi)
	if e.entity == entityTeam {
		s.prefetch(ctx, needsBoards(s, metrics), needsBox(s, metrics))
	}
	if _, err := s.requireFinal(ctx, []string{p.SideA.Team, p.SideB.Team}, e.entity == entityPlayer || needsBox(s, metrics)); err != nil {
		return props.Verdict{}, err
	}
	a, labelA, err := s.sum(ctx, e.entity, p.SideA, metrics)
	if err != nil {
		return props.Verdict{}, err
	}
	b, labelB, err := s.sum(ctx, e.entity, p.SideB, metrics)
	if err != nil {
		return props.Verdict{}, err
	}

	rule, _ := parseWinnerRule(p.WinnerRule)
	metric := metricLabel(metrics)
	text := fmt.Sprintf("%s %s: %s vs %s %s: %s", labelA, metric, a.String(), labelB, metric, b.String())
	return props.Verdict{Winner: decideHeadToHead(a, b, rule), ResultText: text}, nil
}

// sum adds the metrics for one entity. Each value goes through decimal so
// fractional stats compare exactly against thresholds.
func (s *session) sum(ctx context.Context, entity entityKind, subj Subject, metrics []stats.Metric) (decimal.Decimal, string, error) {
	total := decimal.Zero
	label := subj.label()
	for _, m := range metrics {
		var (
			v   float64
			err error
		)
		if entity == entityPlayer {
			v, label, err = s.playerValue(ctx, subj, m)
		} else {
			v, label, err = s.teamValue(ctx, subj.Team, m)
		}
		if err != nil {
			return decimal.Zero, label, err
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total, label, nil
}

func needsBoards(s *session, metrics []stats.Metric) bool {
	for _, m := range metrics {
		if m == s.vocab.Score {
			return true
		}
	}
	return false
}

func needsBox(s *session, metrics []stats.Metric) bool {
	for _, m := range metrics {
		if m != s.vocab.Score {
			return true
		}
	}
	return false
}

// StatOverUnder reads a single metric for a player or a team.
func StatOverUnder() Evaluator { return overUnder{kind: KindStatOverUnder} }

// PlayerMultiStatOU sums two or more player metrics.
func PlayerMultiStatOU() Evaluator {
	return overUnder{kind: KindPlayerMultiStatOU, fixed: entityPlayer, multi: true}
}

// TeamMultiStatOU sums two or more team metrics.
func TeamMultiStatOU() Evaluator {
	return overUnder{kind: KindTeamMultiStatOU, fixed: entityTeam, multi: true}
}

// PlayerH2H compares one metric between two players.
func PlayerH2H() Evaluator { return headToHead{kind: KindPlayerH2H, entity: entityPlayer} }

// TeamStatH2H compares one metric between two teams.
func TeamStatH2H() Evaluator { return headToHead{kind: KindTeamStatH2H, entity: entityTeam} }

// PlayerMultiStatH2H compares summed player metrics.
func PlayerMultiStatH2H() Evaluator {
	return headToHead{kind: KindPlayerMultiStatH2H, entity: entityPlayer, multi: true}
}

// TeamMultiStatH2H compares summed team metrics.
func TeamMultiStatH2H() Evaluator {
	return headToHead{kind: KindTeamMultiStatH2H, entity: entityTeam, multi: true}
}
