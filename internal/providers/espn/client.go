package espn

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/preston-bernstein/prop-grader/internal/providers"
	"github.com/preston-bernstein/prop-grader/internal/timeutil"
)

// Config controls how the ESPN client reaches the site API.
type Config struct {
	BaseURL    string
	SportPaths map[string]string
	Headers    map[string]string
	HTTPClient *http.Client
}

// Client fetches raw scoreboard and summary payloads from ESPN.
type Client struct {
	baseURL    string
	paths      map[string]string
	headers    map[string]string
	httpClient providers.HTTPDoer
}

// NewClient constructs an ESPN client. Configured sport paths extend and
// override the defaults.
func NewClient(cfg Config) *Client {
	paths := make(map[string]string, len(DefaultSportPaths)+len(cfg.SportPaths))
	for k, v := range DefaultSportPaths {
		paths[k] = v
	}
	for k, v := range cfg.SportPaths {
		paths[strings.ToLower(k)] = strings.Trim(v, "/")
	}

	headers := map[string]string{"User-Agent": defaultUserAgent}
	for k, v := range cfg.Headers {
		headers[k] = v
	}

	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(base, "/"),
		paths:      paths,
		headers:    headers,
		httpClient: providers.DefaultDoer(cfg.HTTPClient, defaultHTTPTimeout),
	}
}

func (c *Client) Name() string {
	return providerName
}

// Supports reports whether a sport path is known for league.
func (c *Client) Supports(league string) bool {
	_, ok := c.paths[strings.ToLower(league)]
	return ok
}

// FetchScoreboard retrieves a scoreboard by date (dates=YYYYMMDD) or by
// season year and week.
func (c *Client) FetchScoreboard(ctx context.Context, q providers.ScoreboardQuery) ([]byte, error) {
	path, err := c.sportPath(q.League)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	switch {
	case q.Weekly():
		params.Set("dates", strconv.Itoa(q.Year))
		params.Set("week", strconv.Itoa(q.Week))
		if q.SeasonType > 0 {
			params.Set("seasontype", strconv.Itoa(q.SeasonType))
		}
	case q.Date != "":
		day, err := timeutil.CompactDate(q.Date)
		if err != nil {
			return nil, fmt.Errorf("espn: invalid date %q: %w", q.Date, err)
		}
		params.Set("dates", day)
	}
	params.Set("limit", "300")

	endpoint := fmt.Sprintf("%s/%s/scoreboard?%s", c.baseURL, path, params.Encode())
	return providers.Get(ctx, c.httpClient, providerName, endpoint, c.headers)
}

// FetchBoxScore retrieves the game summary, which carries the box score.
func (c *Client) FetchBoxScore(ctx context.Context, league, gameID string) ([]byte, error) {
	path, err := c.sportPath(league)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/%s/summary?event=%s", c.baseURL, path, url.QueryEscape(gameID))
	return providers.Get(ctx, c.httpClient, providerName, endpoint, c.headers)
}

func (c *Client) sportPath(league string) (string, error) {
	path, ok := c.paths[strings.ToLower(league)]
	if !ok {
		return "", fmt.Errorf("espn: league %q: %w", league, providers.ErrUnsupported)
	}
	return path, nil
}
