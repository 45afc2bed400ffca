package normalize

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
	"github.com/preston-bernstein/prop-grader/internal/failure"
	"github.com/preston-bernstein/prop-grader/internal/providers"
	"github.com/preston-bernstein/prop-grader/internal/providers/espn"
)

type fakeFetcher struct {
	body    []byte
	err     error
	queries []providers.ScoreboardQuery
	boxIDs  []string
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) FetchScoreboard(_ context.Context, q providers.ScoreboardQuery) ([]byte, error) {
	f.queries = append(f.queries, q)
	return f.body, f.err
}

func (f *fakeFetcher) FetchBoxScore(_ context.Context, league, gameID string) ([]byte, error) {
	f.boxIDs = append(f.boxIDs, league+":"+gameID)
	return f.body, f.err
}

func espnFamily(f providers.Fetcher) Family {
	return Family{Fetcher: f, Scoreboards: espn.ScoreboardAdapter{}, BoxScores: espn.BoxScoreAdapter{}}
}

func TestScoreboardRoutesLeagueToFamily(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(`{"events":[{"id":"1","competitions":[{"competitors":[
		{"homeAway":"home","score":"7","team":{"abbreviation":"NYY"}},
		{"homeAway":"away","score":"3","team":{"abbreviation":"BOS"}}]}]}]}`)}
	svc := NewService("", nil)
	svc.Register("espn", espnFamily(fetcher))
	svc.Route("MLB", "espn")

	board, err := svc.Scoreboard(context.Background(), "mlb", "2024-07-04")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(board.Games) != 1 || board.Completeness != stats.Complete {
		t.Fatalf("unexpected board %+v", board)
	}
	if fetcher.queries[0].Date != "2024-07-04" || fetcher.queries[0].League != "mlb" {
		t.Fatalf("unexpected query %+v", fetcher.queries[0])
	}
}

func TestUnknownLeagueIsValidation(t *testing.T) {
	svc := NewService("", nil)
	_, err := svc.BoxScore(context.Background(), "cricket", "1")
	if !failure.Is(err, failure.KindValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if svc.Supports("cricket") {
		t.Fatal("expected cricket to be unsupported")
	}
}

func TestFallbackFamilyServesUnroutedLeagues(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(`{}`)}
	svc := NewService("espn", nil)
	svc.Register("espn", espnFamily(fetcher))

	box, err := svc.BoxScore(context.Background(), "NHL", "55")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if box.Completeness != stats.Empty {
		t.Fatalf("expected empty box score for empty payload, got %s", box.Completeness)
	}
	if fetcher.boxIDs[0] != "nhl:55" {
		t.Fatalf("expected lower-cased league, got %s", fetcher.boxIDs[0])
	}
}

func TestFetchErrorsMapToFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want failure.Kind
	}{
		{"upstream", &providers.UpstreamError{Provider: "fake", StatusCode: 503}, failure.KindUpstream},
		{"transport", errors.New("dial tcp: refused"), failure.KindUpstream},
		{"unsupported", fmt.Errorf("weekly: %w", providers.ErrUnsupported), failure.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService("", nil)
			svc.Register("espn", espnFamily(&fakeFetcher{err: tc.err}))
			svc.Route("nba", "espn")

			_, err := svc.Scoreboard(context.Background(), "nba", "2024-01-01")
			if got := failure.KindOf(err); got != tc.want {
				t.Fatalf("expected %s, got %s (%v)", tc.want, got, err)
			}
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected provider error to stay wrapped, got %v", err)
			}
		})
	}
}

func TestWeeklyScoreboardRequiresWeek(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte(`{}`)}
	svc := NewService("espn", nil)
	svc.Register("espn", espnFamily(fetcher))

	if _, err := svc.WeeklyScoreboard(context.Background(), "nfl", 2024, 0, 2); !failure.Is(err, failure.KindValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if _, err := svc.WeeklyScoreboard(context.Background(), "nfl", 2024, 5, 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if q := fetcher.queries[0]; !q.Weekly() || q.Week != 5 || q.SeasonType != 2 {
		t.Fatalf("unexpected weekly query %+v", q)
	}
}

func TestMissingAdapterIsUnsupported(t *testing.T) {
	svc := NewService("", nil)
	svc.Register("raw", Family{Fetcher: &fakeFetcher{}})
	svc.Route("nba", "raw")

	_, err := svc.BoxScore(context.Background(), "nba", "1")
	if !errors.Is(err, providers.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestMalformedBodyIsUpstream(t *testing.T) {
	for _, body := range [][]byte{nil, []byte("<html>502 Bad Gateway</html>"), []byte(`{"events":[`)} {
		svc := NewService("espn", nil)
		svc.Register("espn", espnFamily(&fakeFetcher{body: body}))

		_, err := svc.Scoreboard(context.Background(), "nba", "2024-01-01")
		if !failure.Is(err, failure.KindUpstream) || !errors.Is(err, ErrMalformedBody) {
			t.Fatalf("scoreboard %q: expected upstream failure, got %v", body, err)
		}
		_, err = svc.BoxScore(context.Background(), "nba", "1")
		if !failure.Is(err, failure.KindUpstream) || !errors.Is(err, ErrMalformedBody) {
			t.Fatalf("box score %q: expected upstream failure, got %v", body, err)
		}
	}
}

func TestEmptyButValidBodyIsNotAFailure(t *testing.T) {
	svc := NewService("espn", nil)
	svc.Register("espn", espnFamily(&fakeFetcher{body: []byte(`{"events":[]}`)}))

	board, err := svc.Scoreboard(context.Background(), "nba", "2024-01-01")
	if err != nil || board.Completeness != stats.Empty {
		t.Fatalf("expected an empty day to stay empty, got %+v %v", board, err)
	}
}
