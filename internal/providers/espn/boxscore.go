package espn

import (
	"strings"

	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
)

// BoxScoreAdapter normalizes ESPN game summary payloads.
type BoxScoreAdapter struct{}

// NormalizeBoxScore walks team blocks, then statistic groups, then athlete
// rows. Team stats come from the team statistics block when present and are
// otherwise summed from player rows. Opposing groups such as pitching never
// feed a team's plain metrics.
func (BoxScoreAdapter) NormalizeBoxScore(raw []byte, league, gameID string) stats.BoxScore {
	out := stats.BoxScore{GameID: gameID, League: league, Completeness: stats.Empty}

	var payload summaryResponse
	typeErr := decode(raw, &payload)
	if typeErr != nil && !isTypeError(typeErr) {
		return out
	}

	vocab := stats.VocabularyFor(league)
	if len(payload.Header.Competitions) > 0 {
		id := firstNonEmpty(string(payload.Header.ID), string(payload.Header.Competitions[0].ID), gameID)
		game := mapCompetition(id, league, payload.Header.Competitions[0], vocab)
		out.Game = &game
	}

	out.Players = mapPlayers(payload.BoxScore.Players, vocab)
	out.Teams = mapTeamBlocks(payload.BoxScore.Teams, vocab, out.Game)
	stats.FillTeamTotals(&out)

	out.Completeness = stats.BoxScoreCompleteness(out)
	if typeErr != nil && out.Completeness == stats.Complete {
		out.Completeness = stats.Partial
	}
	return out
}

func mapPlayers(blocks []playerBlockResponse, vocab stats.Vocabulary) []stats.PlayerBoxScore {
	var order []string
	byKey := map[string]*stats.PlayerBoxScore{}

	for _, block := range blocks {
		team := teamLabel(block.Team, "")
		for _, group := range block.Statistics {
			groupName := firstNonEmpty(group.Name, group.Type)
			keys := firstNonEmptySlice(group.Keys, group.Names, group.Labels)
			for _, row := range group.Athletes {
				name := firstNonEmpty(row.Athlete.DisplayName, row.Athlete.ShortName)
				id := string(row.Athlete.ID)
				if id == "" {
					if name == "" {
						continue
					}
					id = stats.PlayerKey(team, name)
				}

				p, ok := byKey[id]
				if !ok {
					p = &stats.PlayerBoxScore{
						PlayerID: id,
						Name:     name,
						Team:     team,
						Position: row.Athlete.Position.Abbreviation,
						Stats:    map[stats.Metric]float64{},
					}
					byKey[id] = p
					order = append(order, id)
				}
				addRow(p, vocab, groupName, keys, group.Labels, row.Stats)
			}
		}
	}

	players := make([]stats.PlayerBoxScore, 0, len(order))
	for _, id := range order {
		players = append(players, *byKey[id])
	}
	return players
}

// addRow zips keys with values positionally. Composite values such as "9-17"
// stay in the game line only. Plain metrics are first-writer wins across
// groups; the group-qualified form is always recorded.
func addRow(p *stats.PlayerBoxScore, vocab stats.Vocabulary, group string, keys, labels []string, values []flexString) {
	for i, raw := range values {
		if i >= len(keys) {
			break
		}
		value := strings.TrimSpace(string(raw))
		label := keys[i]
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		p.GameLine = append(p.GameLine, stats.LineItem{Label: label, Value: value})

		v, ok := stats.ParseNumeric(value)
		if !ok {
			continue
		}
		setMetric(p.Stats, vocab.Resolve(keys[i]), v)
		if group != "" {
			p.Stats[vocab.Qualify(group, keys[i])] = v
		}
	}
}

func mapTeamBlocks(blocks []teamBlockResponse, vocab stats.Vocabulary, game *stats.Game) []stats.TeamBoxScore {
	var teams []stats.TeamBoxScore
	for _, block := range blocks {
		abbr := teamLabel(block.Team, "")
		values := map[stats.Metric]float64{}
		flattenTeamStats(values, vocab, "", block.Statistics)
		if game != nil {
			if side, ok := game.SideOf(abbr); ok {
				if score, ok := game.Total(side); ok {
					setMetric(values, vocab.Score, score)
				}
			}
		}
		if len(values) == 0 {
			continue
		}
		teams = append(teams, stats.TeamBoxScore{Team: abbr, Stats: values, Source: stats.SourceBlock})
	}
	return teams
}

func flattenTeamStats(dst map[stats.Metric]float64, vocab stats.Vocabulary, group string, items []teamStatResponse) {
	for _, item := range items {
		if len(item.Stats) > 0 {
			flattenTeamStats(dst, vocab, firstNonEmpty(item.Name, group), item.Stats)
			continue
		}
		key := firstNonEmpty(item.Name, item.Abbreviation, item.Label)
		if key == "" {
			continue
		}
		v, ok := stats.ParseNumeric(string(item.DisplayValue))
		if !ok {
			continue
		}
		if !vocab.Opposing(group) {
			setMetric(dst, vocab.Resolve(key), v)
		}
		if group != "" {
			dst[vocab.Qualify(group, key)] = v
		}
	}
}

func setMetric(dst map[stats.Metric]float64, m stats.Metric, v float64) {
	if m == "" {
		return
	}
	if _, exists := dst[m]; !exists {
		dst[m] = v
	}
}

func firstNonEmptySlice(options ...[]string) []string {
	for _, o := range options {
		if len(o) > 0 {
			return o
		}
	}
	return nil
}
