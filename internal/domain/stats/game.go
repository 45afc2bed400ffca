package stats

import (
	"strings"
	"time"
)

// GameStatus mirrors the shared contract for game lifecycle states.
type GameStatus string

const (
	StatusScheduled  GameStatus = "SCHEDULED"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusFinal      GameStatus = "FINAL"
)

// Side identifies which competitor of a game a value belongs to.
type Side string

const (
	Home Side = "home"
	Away Side = "away"
)

// ParseSide accepts "home"/"away" in any case.
func ParseSide(raw string) (Side, bool) {
	switch Side(strings.ToLower(strings.TrimSpace(raw))) {
	case Home:
		return Home, true
	case Away:
		return Away, true
	}
	return "", false
}

// Competitor is one team in a game as seen from a scoreboard.
type Competitor struct {
	TeamID       string             `json:"teamId,omitempty"`
	Abbreviation string             `json:"abbreviation"`
	DisplayName  string             `json:"displayName,omitempty"`
	Score        *float64           `json:"score,omitempty"`
	Line         map[Metric]float64 `json:"line,omitempty"`
}

// Matches reports whether ref names this competitor by abbreviation or id.
func (c Competitor) Matches(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	if c.Abbreviation != "" && strings.EqualFold(c.Abbreviation, ref) {
		return true
	}
	return c.TeamID != "" && c.TeamID == ref
}

// Game is the canonical game shape produced by every scoreboard adapter.
// It is rebuilt on each normalization call and never persisted.
type Game struct {
	ID          string     `json:"id"`
	League      string     `json:"league"`
	StartTime   time.Time  `json:"startTime"`
	Status      GameStatus `json:"status"`
	StatusLabel string     `json:"statusLabel"`
	Home        Competitor `json:"home"`
	Away        Competitor `json:"away"`
}

// Final reports whether the game has completed.
func (g Game) Final() bool {
	return g.Status == StatusFinal
}

// Competitor returns the competitor on the given side.
func (g Game) Competitor(side Side) Competitor {
	if side == Away {
		return g.Away
	}
	return g.Home
}

// Total returns the score for a side, if known.
func (g Game) Total(side Side) (float64, bool) {
	c := g.Competitor(side)
	if c.Score == nil {
		return 0, false
	}
	return *c.Score, true
}

// SideOf resolves a team abbreviation or id to the side it plays on.
func (g Game) SideOf(team string) (Side, bool) {
	switch {
	case g.Home.Matches(team):
		return Home, true
	case g.Away.Matches(team):
		return Away, true
	}
	return "", false
}

// LineValue returns a line-score metric for a side. The score metric is read
// from Score so callers can treat both uniformly.
func (g Game) LineValue(side Side, metric Metric, score Metric) (float64, bool) {
	if metric == score {
		return g.Total(side)
	}
	c := g.Competitor(side)
	v, ok := c.Line[metric]
	return v, ok
}

// Scoreboard is the normalized set of games returned for a date or week.
type Scoreboard struct {
	League       string       `json:"league"`
	Games        []Game       `json:"games"`
	Completeness Completeness `json:"completeness"`
}

// Game looks up a game by id.
func (s Scoreboard) Game(id string) (Game, bool) {
	for _, g := range s.Games {
		if g.ID == id {
			return g, true
		}
	}
	return Game{}, false
}

// GameWithTeam returns the first game in which team appears.
func (s Scoreboard) GameWithTeam(team string) (Game, bool) {
	for _, g := range s.Games {
		if _, ok := g.SideOf(team); ok {
			return g, true
		}
	}
	return Game{}, false
}

// ScoreboardCompleteness grades a set of games: empty when none, partial when
// any game is missing a competitor abbreviation.
func ScoreboardCompleteness(games []Game) Completeness {
	if len(games) == 0 {
		return Empty
	}
	for _, g := range games {
		if g.Home.Abbreviation == "" || g.Away.Abbreviation == "" {
			return Partial
		}
	}
	return Complete
}
