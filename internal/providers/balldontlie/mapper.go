package balldontlie

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
	"github.com/preston-bernstein/prop-grader/internal/timeutil"
)

// ScoreboardAdapter normalizes merged /games responses.
type ScoreboardAdapter struct{}

func (ScoreboardAdapter) NormalizeScoreboard(raw []byte, l string) stats.Scoreboard {
	out := stats.Scoreboard{League: l, Completeness: stats.Empty}

	var payload listResponse[gameResponse]
	if err := json.Unmarshal(raw, &payload); err != nil {
		return out
	}
	seen := map[int]bool{}
	for _, g := range payload.Data {
		if g.ID == 0 || seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		out.Games = append(out.Games, mapGame(g, l, g.HomeTeam, g.VisitorTeam))
	}
	out.Completeness = stats.ScoreboardCompleteness(out.Games)
	return out
}

// BoxScoreAdapter normalizes merged /stats responses. The API has no team
// stat block, so team totals are always summed from player rows.
type BoxScoreAdapter struct{}

func (BoxScoreAdapter) NormalizeBoxScore(raw []byte, l, gameID string) stats.BoxScore {
	out := stats.BoxScore{GameID: gameID, League: l, Completeness: stats.Empty}

	var payload listResponse[statResponse]
	if err := json.Unmarshal(raw, &payload); err != nil {
		return out
	}

	vocab := stats.VocabularyFor(l)
	teams := map[int]teamResponse{}
	var gameRow *gameResponse
	for i := range payload.Data {
		row := payload.Data[i]
		if row.Team.ID != 0 {
			teams[row.Team.ID] = row.Team
		}
		if gameRow == nil && row.Game.ID != 0 {
			gameRow = &payload.Data[i].Game
		}
		if p, ok := mapPlayer(row, vocab); ok {
			out.Players = append(out.Players, p)
		}
	}

	if gameRow != nil {
		g := mapGame(*gameRow, l, teams[gameRow.HomeTeamID], teams[gameRow.VisitorTeamID])
		out.Game = &g
	}
	stats.FillTeamTotals(&out)
	if out.Game != nil {
		for i := range out.Teams {
			if side, ok := out.Game.SideOf(out.Teams[i].Team); ok {
				if score, ok := out.Game.Total(side); ok {
					out.Teams[i].Stats[vocab.Score] = score
				}
			}
		}
	}
	out.Completeness = stats.BoxScoreCompleteness(out)
	return out
}

func mapGame(g gameResponse, l string, home, away teamResponse) stats.Game {
	status, label := mapStatus(g)
	game := stats.Game{
		ID:          strconv.Itoa(g.ID),
		League:      l,
		StartTime:   parseStart(g),
		Status:      status,
		StatusLabel: label,
		Home:        mapTeam(home),
		Away:        mapTeam(away),
	}
	if status != stats.StatusScheduled {
		hs, as := float64(g.HomeTeamScore), float64(g.VisitorTeamScore)
		game.Home.Score = &hs
		game.Away.Score = &as
	}
	return game
}

func mapTeam(t teamResponse) stats.Competitor {
	c := stats.Competitor{
		Abbreviation: strings.TrimSpace(t.Abbreviation),
		DisplayName:  strings.TrimSpace(t.FullName),
	}
	if t.ID != 0 {
		c.TeamID = strconv.Itoa(t.ID)
	}
	if c.Abbreviation == "" {
		c.Abbreviation = firstNonEmpty(t.Name, c.TeamID)
	}
	return c
}

// mapStatus reads balldontlie's free-form status: "Final", a period label
// such as "3rd Qtr" or "Halftime", or an ISO start time for scheduled games.
func mapStatus(g gameResponse) (stats.GameStatus, string) {
	raw := strings.TrimSpace(g.Status)
	lower := strings.ToLower(raw)
	switch {
	case lower == "final" || lower == "ended":
		return stats.StatusFinal, "Final"
	case strings.Contains(lower, "qtr") || strings.Contains(lower, "half") || strings.HasPrefix(lower, "ot") || g.Period > 0:
		if g.Period > 4 {
			return stats.StatusInProgress, "OT"
		}
		if g.Period > 0 {
			return stats.StatusInProgress, fmt.Sprintf("Q%d", g.Period)
		}
		return stats.StatusInProgress, raw
	default:
		return stats.StatusScheduled, raw
	}
}

func parseStart(g gameResponse) time.Time {
	for _, raw := range []string{g.Datetime, g.Status, g.Date} {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
			return t.UTC()
		}
	}
	if t, err := timeutil.ParseDate(g.Date); err == nil {
		return t
	}
	return time.Time{}
}

func mapPlayer(row statResponse, vocab stats.Vocabulary) (stats.PlayerBoxScore, bool) {
	name := strings.TrimSpace(row.Player.FirstName + " " + row.Player.LastName)
	team := strings.TrimSpace(row.Team.Abbreviation)
	if name == "" && row.Player.ID == 0 {
		return stats.PlayerBoxScore{}, false
	}

	id := stats.PlayerKey(team, name)
	if row.Player.ID != 0 {
		id = strconv.Itoa(row.Player.ID)
	}

	p := stats.PlayerBoxScore{
		PlayerID: id,
		Name:     name,
		Team:     team,
		Position: row.Player.Position,
		Stats:    map[stats.Metric]float64{},
	}
	fields := []struct {
		key   string
		value *float64
	}{
		{"pts", row.Pts}, {"reb", row.Reb}, {"oreb", row.Oreb}, {"dreb", row.Dreb},
		{"ast", row.Ast}, {"stl", row.Stl}, {"blk", row.Blk}, {"turnover", row.Turnover},
		{"pf", row.PF}, {"fgm", row.FGM}, {"fga", row.FGA}, {"fg3m", row.FG3M},
		{"fg3a", row.FG3A}, {"ftm", row.FTM}, {"fta", row.FTA},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if v, ok := stats.Finite(*f.value); ok {
			p.Stats[vocab.Resolve(f.key)] = v
		}
		p.GameLine = append(p.GameLine, stats.LineItem{Label: strings.ToUpper(f.key), Value: stats.FormatNumber(*f.value)})
	}
	if v, ok := stats.ParseNumeric(row.Min); ok {
		p.Stats[vocab.Resolve("min")] = v
	}
	return p, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
