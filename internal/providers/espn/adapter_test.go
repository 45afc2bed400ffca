package espn

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return raw
}

func TestNormalizeScoreboardMapsEvents(t *testing.T) {
	board := ScoreboardAdapter{}.NormalizeScoreboard(loadFixture(t, "mlb_scoreboard.json"), "mlb")

	if len(board.Games) != 3 {
		t.Fatalf("expected 3 de-duplicated games, got %d", len(board.Games))
	}
	if board.Completeness != stats.Complete {
		t.Fatalf("expected complete, got %s", board.Completeness)
	}

	final := board.Games[0]
	if final.ID != "401569001" || final.Status != stats.StatusFinal || final.StatusLabel != "Final" {
		t.Fatalf("unexpected final game %+v", final)
	}
	if final.Home.Abbreviation != "NYY" || final.Away.Abbreviation != "BOS" {
		t.Fatalf("expected homeAway flag to win over order, got home=%s away=%s", final.Home.Abbreviation, final.Away.Abbreviation)
	}
	if v, ok := final.Total(stats.Away); !ok || v != 7 {
		t.Fatalf("expected away score 7, got %v %v", v, ok)
	}
	if final.Home.Line["hits"] != 6 || final.Home.Line["errors"] != 2 {
		t.Fatalf("expected hits/errors line score, got %+v", final.Home.Line)
	}
	if final.StartTime.IsZero() || final.StartTime.Hour() != 17 {
		t.Fatalf("expected parsed start time, got %s", final.StartTime)
	}

	live := board.Games[1]
	if live.Home.Abbreviation != "Mets" || live.Away.Abbreviation != "Phillies" {
		t.Fatalf("expected order fallback and naming chain, got home=%q away=%q", live.Home.Abbreviation, live.Away.Abbreviation)
	}
	if live.Away.Score != nil {
		t.Fatal("expected non-numeric score to be absent")
	}
	if live.Status != stats.StatusInProgress || live.StatusLabel != "Top 5th" {
		t.Fatalf("expected inning label, got %s %q", live.Status, live.StatusLabel)
	}

	scheduled := board.Games[2]
	if scheduled.Status != stats.StatusScheduled || scheduled.StatusLabel != "Scheduled" {
		t.Fatalf("expected raw description for scheduled game, got %q", scheduled.StatusLabel)
	}
}

func TestNormalizeScoreboardMalformedIsEmpty(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte("not json"), []byte(`{"events": "nope"}`)} {
		board := ScoreboardAdapter{}.NormalizeScoreboard(raw, "nba")
		if len(board.Games) != 0 || board.Completeness != stats.Empty {
			t.Fatalf("expected empty scoreboard for %q, got %+v", raw, board)
		}
	}
}

func TestNormalizeScoreboardMissingCompetitors(t *testing.T) {
	raw := []byte(`{"events":[{"id":"1","competitions":[{"competitors":[{"team":{}}]}]}]}`)
	board := ScoreboardAdapter{}.NormalizeScoreboard(raw, "nba")
	if len(board.Games) != 1 {
		t.Fatalf("expected one game, got %d", len(board.Games))
	}
	if board.Games[0].Away.Abbreviation != "" {
		t.Fatalf("expected empty abbreviation, got %q", board.Games[0].Away.Abbreviation)
	}
	if board.Completeness != stats.Partial {
		t.Fatalf("expected partial, got %s", board.Completeness)
	}
}

func TestNormalizeBoxScoreBaseball(t *testing.T) {
	box := BoxScoreAdapter{}.NormalizeBoxScore(loadFixture(t, "mlb_summary.json"), "mlb", "401569001")

	if box.Completeness != stats.Complete {
		t.Fatalf("expected complete box score, got %s", box.Completeness)
	}
	if box.Game == nil || !box.Game.Final() || box.Game.Home.Abbreviation != "NYY" {
		t.Fatalf("expected final game from header, got %+v", box.Game)
	}

	judge, ok := box.Player("Aaron Judge", "NYY")
	if !ok {
		t.Fatal("expected Aaron Judge")
	}
	if judge.Stats["hits"] != 3 || judge.Stats["rbi"] != 2 || judge.Stats["at_bats"] != 4 {
		t.Fatalf("unexpected judge stats %+v", judge.Stats)
	}
	if _, ok := judge.Stats["avg"]; ok {
		t.Fatal("expected non-numeric avg to be skipped")
	}
	if len(judge.GameLine) != 8 || judge.GameLine[0].Label != "H-AB" || judge.GameLine[0].Value != "3-4" {
		t.Fatalf("expected raw game line, got %+v", judge.GameLine)
	}

	soto, ok := box.Player("NYY:Juan Soto", "")
	if !ok || soto.Stats["hits"] != 2 {
		t.Fatalf("expected synthesized key for Soto, got %+v", soto)
	}

	cole, _ := box.Player("32815", "")
	if cole.Stats["pitching.strikeouts"] != 9 || cole.Stats["innings_pitched"] != 6 {
		t.Fatalf("unexpected pitching stats %+v", cole.Stats)
	}

	nyy, ok := box.Team("NYY")
	if !ok || nyy.Source != stats.SourceBlock {
		t.Fatalf("expected NYY team block, got %+v", nyy)
	}
	if nyy.Stats["hits"] != 6 || nyy.Stats["pitching.hits"] != 11 || nyy.Stats["runs"] != 3 {
		t.Fatalf("unexpected NYY team stats %+v", nyy.Stats)
	}
}

func TestSummedBaseballTotalsLeaveOutPitching(t *testing.T) {
	var payload map[string]any
	if err := json.Unmarshal(loadFixture(t, "mlb_summary.json"), &payload); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	delete(payload["boxscore"].(map[string]any), "teams")
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	box := BoxScoreAdapter{}.NormalizeBoxScore(raw, "mlb", "401569001")
	cole, _ := box.Player("32815", "")
	if cole.Stats["hits"] != 7 {
		t.Fatalf("expected the pitcher to keep hits allowed on his own row, got %+v", cole.Stats)
	}

	nyy, ok := box.Team("NYY")
	if !ok || nyy.Source != stats.SourceSummed {
		t.Fatalf("expected summed NYY block, got %+v", nyy)
	}
	if nyy.Stats["hits"] != 5 {
		t.Fatalf("expected batting hits 5 without hits allowed, got %v", nyy.Stats["hits"])
	}
	if nyy.Stats["strikeouts"] != 1 {
		t.Fatalf("expected batter strikeouts 1 without pitcher strikeouts, got %v", nyy.Stats["strikeouts"])
	}
}

func TestTeamBlockIgnoresOpposingGroupOrder(t *testing.T) {
	raw := []byte(`{"boxscore":{"teams":[{"team":{"abbreviation":"NYY"},"statistics":[` +
		`{"name":"pitching","stats":[{"name":"hits","displayValue":"11"}]},` +
		`{"name":"batting","stats":[{"name":"hits","displayValue":"6"}]}]}]}}`)
	box := BoxScoreAdapter{}.NormalizeBoxScore(raw, "mlb", "1")
	nyy, ok := box.Team("NYY")
	if !ok || nyy.Stats["hits"] != 6 || nyy.Stats["pitching.hits"] != 11 {
		t.Fatalf("expected batting hits as the team's plain hits, got %+v", nyy)
	}
}

func TestNormalizeBoxScoreSumsWhenNoTeamBlock(t *testing.T) {
	box := BoxScoreAdapter{}.NormalizeBoxScore(loadFixture(t, "nba_summary.json"), "nba", "401585001")

	if box.Completeness != stats.Partial {
		t.Fatalf("expected partial when team totals are summed, got %s", box.Completeness)
	}
	if box.Game == nil || box.Game.StatusLabel != "Q3" {
		t.Fatalf("expected quarter label, got %+v", box.Game)
	}

	tatum, _ := box.Player("Jayson Tatum", "")
	if tatum.Stats["points"] != 31 || tatum.Stats["minutes"] != 36 {
		t.Fatalf("unexpected tatum stats %+v", tatum.Stats)
	}
	brown, _ := box.Player("Jaylen Brown", "")
	if _, ok := brown.Stats["rebounds"]; ok {
		t.Fatal("expected -- to be rejected")
	}

	bos, ok := box.Team("BOS")
	if !ok || bos.Source != stats.SourceSummed || bos.Stats["points"] != 55 {
		t.Fatalf("expected summed BOS points 55, got %+v", bos)
	}
}

func TestNormalizeBoxScoreMalformedIsEmpty(t *testing.T) {
	box := BoxScoreAdapter{}.NormalizeBoxScore([]byte("{"), "nba", "1")
	if box.Completeness != stats.Empty || len(box.Players) != 0 {
		t.Fatalf("expected empty box score, got %+v", box)
	}
}

func TestCompositeValuesStayDisplayOnly(t *testing.T) {
	box := BoxScoreAdapter{}.NormalizeBoxScore(loadFixture(t, "nba_summary.json"), "nba", "401585001")
	tatum, _ := box.Player("Jayson Tatum", "")
	for _, m := range []stats.Metric{"field_goals_made", "three_pointers_made", "fieldgoalsmade-fieldgoalsattempted"} {
		if v, ok := tatum.Stats[m]; ok {
			t.Fatalf("expected %s to stay out of numeric stats, got %v", m, v)
		}
	}
	if tatum.GameLine[1].Label != "FG" || tatum.GameLine[1].Value != "11-22" {
		t.Fatalf("expected composite kept in game line, got %+v", tatum.GameLine)
	}

	raw := []byte(`{"boxscore":{"players":[{"team":{"abbreviation":"KC"},"statistics":[{"name":"passing",` +
		`"keys":["completions/passingAttempts","passingYards"],"athletes":[{"athlete":{"id":"1","displayName":"QB"},"stats":["26/49","301"]}]}]}]}`)
	nfl := BoxScoreAdapter{}.NormalizeBoxScore(raw, "nfl", "1")
	qb, ok := nfl.Player("1", "")
	if !ok || qb.Stats["passing_yards"] != 301 {
		t.Fatalf("expected passing yards, got %+v", qb)
	}
	if _, ok := qb.Stats["completions"]; ok {
		t.Fatalf("expected 26/49 not to produce completions, got %+v", qb.Stats)
	}
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 11: "11th", 12: "12th", 21: "21st"}
	for n, want := range cases {
		if got := ordinal(n); got != want {
			t.Fatalf("ordinal(%d)=%s want %s", n, got, want)
		}
	}
}
