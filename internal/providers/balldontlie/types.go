package balldontlie

import "encoding/json"

const providerName = "balldontlie"

// page is one paginated response; rows stay raw until the adapters run.
type page struct {
	Data []json.RawMessage `json:"data"`
	Meta metaResponse      `json:"meta"`
}

type metaResponse struct {
	TotalPages int `json:"total_pages"`
	NextCursor int `json:"next_cursor"`
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

type gameResponse struct {
	ID               int          `json:"id"`
	Date             string       `json:"date"`
	Datetime         string       `json:"datetime"`
	Status           string       `json:"status"`
	Time             string       `json:"time"`
	Period           int          `json:"period"`
	Postseason       bool         `json:"postseason"`
	HomeTeam         teamResponse `json:"home_team"`
	VisitorTeam      teamResponse `json:"visitor_team"`
	HomeTeamID       int          `json:"home_team_id"`
	VisitorTeamID    int          `json:"visitor_team_id"`
	HomeTeamScore    int          `json:"home_team_score"`
	VisitorTeamScore int          `json:"visitor_team_score"`
	Season           int          `json:"season"`
}

type teamResponse struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	City         string `json:"city"`
	FullName     string `json:"full_name"`
	Name         string `json:"name"`
}

type playerResponse struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position"`
}

// statResponse is one player's line in /stats. Counting stats are pointers so
// a missing field stays absent rather than reading as zero.
type statResponse struct {
	ID       int            `json:"id"`
	Min      string         `json:"min"`
	Pts      *float64       `json:"pts"`
	Reb      *float64       `json:"reb"`
	Oreb     *float64       `json:"oreb"`
	Dreb     *float64       `json:"dreb"`
	Ast      *float64       `json:"ast"`
	Stl      *float64       `json:"stl"`
	Blk      *float64       `json:"blk"`
	Turnover *float64       `json:"turnover"`
	PF       *float64       `json:"pf"`
	FGM      *float64       `json:"fgm"`
	FGA      *float64       `json:"fga"`
	FG3M     *float64       `json:"fg3m"`
	FG3A     *float64       `json:"fg3a"`
	FTM      *float64       `json:"ftm"`
	FTA      *float64       `json:"fta"`
	Player   playerResponse `json:"player"`
	Team     teamResponse   `json:"team"`
	Game     gameResponse   `json:"game"`
}
