package espn

import "time"

const (
	providerName       = "espn"
	defaultBaseURL     = "https://site.api.espn.com/apis/site/v2/sports"
	defaultHTTPTimeout = 15 * time.Second
	defaultUserAgent   = "prop-grader/1.0"
)

// DefaultSportPaths maps league tags to ESPN sport/league path segments.
var DefaultSportPaths = map[string]string{
	"nba":   "basketball/nba",
	"wnba":  "basketball/wnba",
	"ncaam": "basketball/mens-college-basketball",
	"ncaaw": "basketball/womens-college-basketball",
	"nfl":   "football/nfl",
	"cfb":   "football/college-football",
	"mlb":   "baseball/mlb",
	"nhl":   "hockey/nhl",
}
