package espn

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
)

// ScoreboardAdapter normalizes ESPN scoreboard payloads.
type ScoreboardAdapter struct{}

// NormalizeScoreboard never fails: malformed input yields an empty scoreboard,
// and fields with unexpected types are skipped with the rest kept.
func (ScoreboardAdapter) NormalizeScoreboard(raw []byte, league string) stats.Scoreboard {
	out := stats.Scoreboard{League: league, Completeness: stats.Empty}

	var payload scoreboardResponse
	typeErr := decode(raw, &payload)
	if typeErr != nil && !isTypeError(typeErr) {
		return out
	}

	vocab := stats.VocabularyFor(league)
	seen := make(map[string]bool, len(payload.Events))
	for _, ev := range payload.Events {
		id := string(ev.ID)
		if id == "" || seen[id] || len(ev.Competitions) == 0 {
			continue
		}
		seen[id] = true

		comp := ev.Competitions[0]
		if comp.Status == nil {
			comp.Status = ev.Status
		}
		if comp.Date == "" {
			comp.Date = ev.Date
		}
		out.Games = append(out.Games, mapCompetition(id, league, comp, vocab))
	}

	out.Completeness = stats.ScoreboardCompleteness(out.Games)
	if typeErr != nil && out.Completeness == stats.Complete {
		out.Completeness = stats.Partial
	}
	return out
}

func mapCompetition(id, league string, comp competitionResponse, vocab stats.Vocabulary) stats.Game {
	game := stats.Game{
		ID:          id,
		League:      league,
		StartTime:   parseTime(comp.Date),
		Status:      mapStatus(comp.Status),
		StatusLabel: statusLabel(comp.Status, vocab.Sport),
	}

	home, away := splitCompetitors(comp.Competitors)
	if home != nil {
		game.Home = mapCompetitor(*home, vocab)
	}
	if away != nil {
		game.Away = mapCompetitor(*away, vocab)
	}
	return game
}

// splitCompetitors classifies by the homeAway flag, falling back to array
// order with the first entry as home.
func splitCompetitors(list []competitorResponse) (home, away *competitorResponse) {
	var rest []*competitorResponse
	for i := range list {
		c := &list[i]
		switch strings.ToLower(c.HomeAway) {
		case "home":
			if home == nil {
				home = c
				continue
			}
		case "away":
			if away == nil {
				away = c
				continue
			}
		}
		rest = append(rest, c)
	}
	for _, c := range rest {
		switch {
		case home == nil:
			home = c
		case away == nil:
			away = c
		}
	}
	return home, away
}

func mapCompetitor(c competitorResponse, vocab stats.Vocabulary) stats.Competitor {
	out := stats.Competitor{
		TeamID:       firstNonEmpty(string(c.Team.ID), string(c.ID)),
		Abbreviation: teamLabel(c.Team, string(c.ID)),
		DisplayName:  firstNonEmpty(c.Team.DisplayName, c.Team.ShortDisplayName, c.Team.Name),
		Score:        c.Score.ptr(),
	}
	line := map[stats.Metric]float64{}
	if c.Hits.set {
		line[vocab.Resolve("hits")] = c.Hits.value
	}
	if c.Errors.set {
		line[vocab.Resolve("errors")] = c.Errors.value
	}
	if len(line) > 0 {
		out.Line = line
	}
	return out
}

// teamLabel applies the naming fallback chain: abbreviation, short display
// name, name, id.
func teamLabel(t teamResponse, fallbackID string) string {
	return firstNonEmpty(t.Abbreviation, t.ShortDisplayName, t.Name, string(t.ID), fallbackID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00", "2006-01-02T15:04Z"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func decode(raw []byte, v any) error {
	if len(raw) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(raw, v)
}

func isTypeError(err error) bool {
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}
