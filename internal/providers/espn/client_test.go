package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/preston-bernstein/prop-grader/internal/providers"
)

func TestFetchScoreboardByDate(t *testing.T) {
	var gotPath, gotDates, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDates = r.URL.Query().Get("dates")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"events":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	body, err := c.FetchScoreboard(context.Background(), providers.ScoreboardQuery{League: "MLB", Date: "2024-07-04"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(body) != `{"events":[]}` {
		t.Fatalf("unexpected body %q", body)
	}
	if gotPath != "/baseball/mlb/scoreboard" || gotDates != "20240704" {
		t.Fatalf("unexpected request path=%s dates=%s", gotPath, gotDates)
	}
	if gotAgent != defaultUserAgent {
		t.Fatalf("expected default user agent, got %q", gotAgent)
	}
}

func TestFetchScoreboardWeekly(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{"dates": q.Get("dates"), "week": q.Get("week"), "seasontype": q.Get("seasontype")}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := c.FetchScoreboard(context.Background(), providers.ScoreboardQuery{League: "nfl", Year: 2024, Week: 5, SeasonType: 2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if query["dates"] != "2024" || query["week"] != "5" || query["seasontype"] != "2" {
		t.Fatalf("unexpected weekly query %+v", query)
	}
}

func TestFetchBoxScoreUsesSummaryEndpoint(t *testing.T) {
	var gotPath, gotEvent, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotEvent = r.URL.Query().Get("event")
		gotHeader = r.Header.Get("X-Custom")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		SportPaths: map[string]string{"xfl": "/football/xfl/"},
		Headers:    map[string]string{"X-Custom": "1"},
	})
	if _, err := c.FetchBoxScore(context.Background(), "xfl", "77"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotPath != "/football/xfl/summary" || gotEvent != "77" || gotHeader != "1" {
		t.Fatalf("unexpected request path=%s event=%s header=%s", gotPath, gotEvent, gotHeader)
	}
}

func TestFetchUnknownLeagueIsUnsupported(t *testing.T) {
	c := NewClient(Config{})
	if c.Supports("cricket") {
		t.Fatal("expected cricket to be unsupported")
	}
	_, err := c.FetchBoxScore(context.Background(), "cricket", "1")
	if !errors.Is(err, providers.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestFetchSurfacesUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	_, err := c.FetchBoxScore(context.Background(), "nba", "1")
	if up, ok := providers.AsUpstreamError(err); !ok || up.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected upstream 502, got %v", err)
	}
}
