package stats

import (
	"sort"
	"strings"
)

// Completeness tells callers how much of a payload survived normalization,
// so "no data" is never mistaken for a confirmed zero.
type Completeness string

const (
	Empty    Completeness = "empty"
	Partial  Completeness = "partial"
	Complete Completeness = "complete"
)

// HasData reports whether anything usable was extracted.
func (c Completeness) HasData() bool {
	return c == Partial || c == Complete
}

// LineItem is a raw display value kept for presentation, e.g. FG "9-17".
type LineItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// PlayerBoxScore is one athlete's numeric stat line for a game.
type PlayerBoxScore struct {
	PlayerID string             `json:"playerId"`
	Name     string             `json:"name"`
	Team     string             `json:"team"`
	Position string             `json:"position,omitempty"`
	Stats    map[Metric]float64 `json:"stats"`
	GameLine []LineItem         `json:"gameLine,omitempty"`
}

// PlayerKey synthesizes a stable identity for providers that omit player ids.
// Repeated calls for the same game must agree so stat rows merge.
func PlayerKey(team, name string) string {
	return strings.ToUpper(strings.TrimSpace(team)) + ":" + strings.TrimSpace(name)
}

// Matches reports whether ref identifies this player by id, synthesized key or
// display name (case-insensitive). team narrows name matches when set.
func (p PlayerBoxScore) Matches(ref, team string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}
	if p.PlayerID == ref {
		return true
	}
	if team != "" && !strings.EqualFold(p.Team, team) {
		return false
	}
	return strings.EqualFold(p.Name, ref)
}

// TeamSource records where a team stat block came from.
type TeamSource string

const (
	SourceBlock  TeamSource = "block"
	SourceSummed TeamSource = "summed"
)

// TeamBoxScore holds team-level numeric stats for a game.
type TeamBoxScore struct {
	Team   string             `json:"team"`
	Stats  map[Metric]float64 `json:"stats"`
	Source TeamSource         `json:"source"`
}

// BoxScore is the normalized detail for one game.
type BoxScore struct {
	GameID       string           `json:"gameId"`
	League       string           `json:"league"`
	Game         *Game            `json:"game,omitempty"`
	Players      []PlayerBoxScore `json:"players"`
	Teams        []TeamBoxScore   `json:"teams"`
	Completeness Completeness     `json:"completeness"`
}

// Player finds a player by id, key or name.
func (b BoxScore) Player(ref, team string) (PlayerBoxScore, bool) {
	for _, p := range b.Players {
		if p.Matches(ref, team) {
			return p, true
		}
	}
	return PlayerBoxScore{}, false
}

// Team finds a team block by abbreviation.
func (b BoxScore) Team(abbr string) (TeamBoxScore, bool) {
	for _, t := range b.Teams {
		if strings.EqualFold(t.Team, abbr) {
			return t, true
		}
	}
	return TeamBoxScore{}, false
}

// SumPlayers builds a team block from every player row belonging to team.
// A plain metric is summed from the player's own side of the game: when the
// row also carries group-qualified forms, the first non-opposing group wins
// and a metric seen only in opposing groups is left out.
func SumPlayers(vocab Vocabulary, team string, players []PlayerBoxScore) (TeamBoxScore, bool) {
	out := TeamBoxScore{Team: team, Stats: map[Metric]float64{}, Source: SourceSummed}
	found := false
	for _, p := range players {
		if !strings.EqualFold(p.Team, team) {
			continue
		}
		found = true
		for k, v := range ownStats(vocab, p.Stats) {
			out.Stats[k] += v
		}
	}
	return out, found
}

func ownStats(vocab Vocabulary, values map[Metric]float64) map[Metric]float64 {
	var qualified []Metric
	for k := range values {
		if k.Qualified() {
			qualified = append(qualified, k)
		}
	}
	sort.Slice(qualified, func(i, j int) bool { return qualified[i] < qualified[j] })

	grouped := map[Metric]bool{}
	own := map[Metric]float64{}
	for _, k := range qualified {
		group, bare := k.Split()
		grouped[bare] = true
		if vocab.Opposing(group) {
			continue
		}
		if _, ok := own[bare]; !ok {
			own[bare] = values[k]
		}
	}
	for k, v := range values {
		if k.Qualified() || grouped[k] {
			continue
		}
		own[k] = v
	}
	return own
}

// FillTeamTotals adds a summed block for every team that has player rows but
// no team block of its own.
func FillTeamTotals(box *BoxScore) {
	vocab := VocabularyFor(box.League)
	seen := map[string]bool{}
	for _, t := range box.Teams {
		seen[strings.ToUpper(t.Team)] = true
	}
	var missing []string
	for _, p := range box.Players {
		key := strings.ToUpper(p.Team)
		if p.Team == "" || seen[key] {
			continue
		}
		seen[key] = true
		missing = append(missing, p.Team)
	}
	sort.Strings(missing)
	for _, team := range missing {
		if block, ok := SumPlayers(vocab, team, box.Players); ok {
			box.Teams = append(box.Teams, block)
		}
	}
}

// BoxScoreCompleteness grades a normalized box score.
func BoxScoreCompleteness(box BoxScore) Completeness {
	if len(box.Players) == 0 && len(box.Teams) == 0 {
		return Empty
	}
	if len(box.Players) == 0 || len(box.Teams) < 2 {
		return Partial
	}
	for _, t := range box.Teams {
		if t.Source == SourceSummed {
			return Partial
		}
	}
	return Complete
}
