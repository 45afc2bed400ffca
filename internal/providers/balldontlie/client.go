package balldontlie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/providers"
	"github.com/preston-bernstein/prop-grader/internal/timeutil"
)

// Config controls how the balldontlie client reaches the upstream API.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timezone   string
	MaxPages   int
}

// Client fetches NBA games and per-game player stats from balldontlie.
// Paginated responses are merged into a single {"data": [...]} body.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient providers.HTTPDoer
	now        func() time.Time
	loc        *time.Location
	maxPages   int
}

const (
	defaultBaseURL     = "https://api.balldontlie.io/v1"
	defaultPerPage     = 100
	defaultHTTPTimeout = 10 * time.Second
	defaultMaxPages    = 5
	league             = "nba"
)

// NewClient constructs a balldontlie client. Dates without an explicit value
// resolve in cfg.Timezone, falling back to UTC.
func NewClient(cfg Config) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	loc := timeutil.ResolveLocation(cfg.Timezone)
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		httpClient: providers.DefaultDoer(cfg.HTTPClient, defaultHTTPTimeout),
		now:        time.Now,
		loc:        loc,
		maxPages:   maxPages,
	}
}

func (c *Client) Name() string {
	return providerName
}

// Supports reports whether the API covers league.
func (c *Client) Supports(l string) bool {
	return strings.EqualFold(l, league)
}

// FetchScoreboard retrieves the games for a date. Weekly queries are not
// supported by the API.
func (c *Client) FetchScoreboard(ctx context.Context, q providers.ScoreboardQuery) ([]byte, error) {
	if q.Weekly() || !c.Supports(q.League) {
		return nil, fmt.Errorf("balldontlie: %s: %w", q.Key(), providers.ErrUnsupported)
	}
	params := url.Values{}
	params.Set("dates[]", c.resolveDate(q.Date))
	return c.fetchAll(ctx, "/games", params)
}

// FetchBoxScore retrieves every player stat line for a game.
func (c *Client) FetchBoxScore(ctx context.Context, l, gameID string) ([]byte, error) {
	if !c.Supports(l) {
		return nil, fmt.Errorf("balldontlie: league %q: %w", l, providers.ErrUnsupported)
	}
	params := url.Values{}
	params.Set("game_ids[]", gameID)
	return c.fetchAll(ctx, "/stats", params)
}

func (c *Client) fetchAll(ctx context.Context, path string, params url.Values) ([]byte, error) {
	rows := make([]json.RawMessage, 0)
	pageNum := 1
	cursor := 0

	for {
		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		q.Set("per_page", strconv.Itoa(defaultPerPage))
		if cursor > 0 {
			q.Set("cursor", strconv.Itoa(cursor))
		} else {
			q.Set("page", strconv.Itoa(pageNum))
		}

		body, err := providers.Get(ctx, c.httpClient, providerName, c.baseURL+path+"?"+q.Encode(), c.headers())
		if err != nil {
			return nil, err
		}

		var payload page
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("balldontlie: decode %s: %w", path, err)
		}
		rows = append(rows, payload.Data...)

		if pageNum >= c.maxPages {
			break
		}
		switch {
		case payload.Meta.NextCursor > 0:
			cursor = payload.Meta.NextCursor
		case payload.Meta.TotalPages > 0:
			if pageNum >= payload.Meta.TotalPages {
				return json.Marshal(page{Data: rows})
			}
		default:
			if len(payload.Data) < defaultPerPage {
				return json.Marshal(page{Data: rows})
			}
		}
		pageNum++
	}

	return json.Marshal(page{Data: rows})
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": c.apiKey}
}

func (c *Client) resolveDate(date string) string {
	if date != "" {
		if _, err := timeutil.ParseDate(date); err == nil {
			return date
		}
	}
	return timeutil.FormatDate(c.now().In(c.loc))
}
