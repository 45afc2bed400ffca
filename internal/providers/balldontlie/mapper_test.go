package balldontlie

import (
	"testing"

	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
)

func TestNormalizeScoreboardMapsGames(t *testing.T) {
	raw := []byte(`{"data":[
		{"id":42,"date":"2024-01-02","datetime":"2024-01-03T00:30:00Z","status":"Final","period":4,
		 "home_team":{"id":2,"abbreviation":"BOS","full_name":"Boston Celtics"},
		 "visitor_team":{"id":20,"abbreviation":"NYK","full_name":"New York Knicks"},
		 "home_team_score":110,"visitor_team_score":104},
		{"id":43,"date":"2024-01-02","status":"3rd Qtr","period":3,
		 "home_team":{"id":5,"abbreviation":"LAL"},"visitor_team":{"id":6,"abbreviation":"GSW"},
		 "home_team_score":70,"visitor_team_score":72},
		{"id":44,"date":"2024-01-02","status":"2024-01-03T03:00:00Z","period":0,
		 "home_team":{"id":7,"abbreviation":"DEN"},"visitor_team":{"id":8,"abbreviation":"PHX"}},
		{"id":42,"status":"Final"}
	]}`)

	board := ScoreboardAdapter{}.NormalizeScoreboard(raw, "nba")
	if len(board.Games) != 3 {
		t.Fatalf("expected 3 de-duplicated games, got %d", len(board.Games))
	}
	final := board.Games[0]
	if final.ID != "42" || !final.Final() || final.StatusLabel != "Final" {
		t.Fatalf("unexpected final game %+v", final)
	}
	if v, _ := final.Total(stats.Home); v != 110 || final.Home.Abbreviation != "BOS" {
		t.Fatalf("unexpected home %+v", final.Home)
	}
	if final.StartTime.Hour() != 0 || final.StartTime.Day() != 3 {
		t.Fatalf("expected datetime to win, got %s", final.StartTime)
	}
	live := board.Games[1]
	if live.Status != stats.StatusInProgress || live.StatusLabel != "Q3" {
		t.Fatalf("unexpected live status %s %q", live.Status, live.StatusLabel)
	}
	scheduled := board.Games[2]
	if scheduled.Status != stats.StatusScheduled || scheduled.Home.Score != nil {
		t.Fatalf("expected scheduled game without scores, got %+v", scheduled)
	}
}

func TestNormalizeBoxScoreSumsPlayers(t *testing.T) {
	raw := []byte(`{"data":[
		{"id":1,"min":"36","pts":31,"reb":8,"ast":5,"fg3m":4,
		 "player":{"id":434,"first_name":"Jayson","last_name":"Tatum","position":"F"},
		 "team":{"id":2,"abbreviation":"BOS"},
		 "game":{"id":42,"status":"Final","home_team_id":2,"visitor_team_id":20,"home_team_score":110,"visitor_team_score":104}},
		{"id":2,"min":"34","pts":24,"reb":null,"ast":4,
		 "player":{"first_name":"Jaylen","last_name":"Brown"},
		 "team":{"id":2,"abbreviation":"BOS"},
		 "game":{"id":42}},
		{"id":3,"pts":40,"player":{"id":9,"first_name":"Jalen","last_name":"Brunson"},
		 "team":{"id":20,"abbreviation":"NYK"},"game":{"id":42}}
	]}`)

	box := BoxScoreAdapter{}.NormalizeBoxScore(raw, "nba", "42")
	if len(box.Players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(box.Players))
	}
	tatum, ok := box.Player("434", "")
	if !ok || tatum.Stats["points"] != 31 || tatum.Stats["three_pointers_made"] != 4 || tatum.Stats["minutes"] != 36 {
		t.Fatalf("unexpected tatum %+v", tatum)
	}
	brown, ok := box.Player("BOS:Jaylen Brown", "")
	if !ok {
		t.Fatal("expected synthesized key for player without id")
	}
	if _, ok := brown.Stats["rebounds"]; ok {
		t.Fatal("expected null rebounds to stay absent")
	}

	if box.Game == nil || !box.Game.Final() || box.Game.Home.Abbreviation != "BOS" || box.Game.Away.Abbreviation != "NYK" {
		t.Fatalf("expected game rebuilt from rows, got %+v", box.Game)
	}
	bos, ok := box.Team("BOS")
	if !ok || bos.Source != stats.SourceSummed || bos.Stats["points"] != 110 || bos.Stats["assists"] != 9 {
		t.Fatalf("unexpected BOS totals %+v", bos)
	}
	if box.Completeness != stats.Partial {
		t.Fatalf("expected partial for summed totals, got %s", box.Completeness)
	}
}

func TestNormalizeMalformedIsEmpty(t *testing.T) {
	if board := (ScoreboardAdapter{}).NormalizeScoreboard([]byte("nope"), "nba"); board.Completeness != stats.Empty {
		t.Fatalf("expected empty scoreboard, got %s", board.Completeness)
	}
	if box := (BoxScoreAdapter{}).NormalizeBoxScore(nil, "nba", "1"); box.Completeness != stats.Empty {
		t.Fatalf("expected empty box score, got %s", box.Completeness)
	}
}
