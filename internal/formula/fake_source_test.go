package formula

import (
	"context"
	"fmt"
	"sync"

	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
)

// fakeSource serves canned normalized data and records every call.
type fakeSource struct {
	mu       sync.Mutex
	daily    map[string]stats.Scoreboard
	weekly   map[string]stats.Scoreboard
	boxes    map[string]stats.BoxScore
	errDaily error
	errBox   error
	calls    []string
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSource) Scoreboard(_ context.Context, league, date string) (stats.Scoreboard, error) {
	f.record("daily:" + date)
	if f.errDaily != nil {
		return stats.Scoreboard{}, f.errDaily
	}
	board, ok := f.daily[date]
	if !ok {
		return stats.Scoreboard{League: league, Completeness: stats.Empty}, nil
	}
	return board, nil
}

func (f *fakeSource) WeeklyScoreboard(_ context.Context, league string, year, week, seasonType int) (stats.Scoreboard, error) {
	key := fmt.Sprintf("%d:%d:%d", year, week, seasonType)
	f.record("weekly:" + key)
	board, ok := f.weekly[key]
	if !ok {
		return stats.Scoreboard{League: league, Completeness: stats.Empty}, nil
	}
	return board, nil
}

func (f *fakeSource) BoxScore(_ context.Context, league, gameID string) (stats.BoxScore, error) {
	f.record("box:" + gameID)
	if f.errBox != nil {
		return stats.BoxScore{}, f.errBox
	}
	box, ok := f.boxes[gameID]
	if !ok {
		return stats.BoxScore{GameID: gameID, League: league, Completeness: stats.Empty}, nil
	}
	return box, nil
}

func score(v float64) *float64 { return &v }

func game(id string, status stats.GameStatus, home, away string, homeScore, awayScore float64) stats.Game {
	return stats.Game{
		ID:          id,
		Status:      status,
		StatusLabel: string(status),
		Home:        stats.Competitor{Abbreviation: home, Score: score(homeScore)},
		Away:        stats.Competitor{Abbreviation: away, Score: score(awayScore)},
	}
}

func board(games ...stats.Game) stats.Scoreboard {
	return stats.Scoreboard{Games: games, Completeness: stats.ScoreboardCompleteness(games)}
}

func player(id, name, team string, values map[stats.Metric]float64) stats.PlayerBoxScore {
	return stats.PlayerBoxScore{PlayerID: id, Name: name, Team: team, Stats: values}
}
