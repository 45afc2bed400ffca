package espn

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
)

// flexNumber decodes ESPN numbers that arrive either as JSON numbers or as
// strings ("7"). Anything else leaves it unset.
type flexNumber struct {
	value float64
	set   bool
}

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		f.value, f.set = stats.ParseNumeric(s)
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return nil
	}
	f.value, f.set = stats.Finite(v)
	return nil
}

func (f flexNumber) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

// flexString decodes a value that may be a string or a number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(strings.TrimSpace(string(b)))
	return nil
}

type scoreboardResponse struct {
	Events []eventResponse `json:"events"`
}

type eventResponse struct {
	ID           flexString            `json:"id"`
	Date         string                `json:"date"`
	Competitions []competitionResponse `json:"competitions"`
	Status       *statusResponse       `json:"status"`
}

type competitionResponse struct {
	ID          flexString           `json:"id"`
	Date        string               `json:"date"`
	Competitors []competitorResponse `json:"competitors"`
	Status      *statusResponse      `json:"status"`
}

type competitorResponse struct {
	ID       flexString   `json:"id"`
	HomeAway string       `json:"homeAway"`
	Score    flexNumber   `json:"score"`
	Hits     flexNumber   `json:"hits"`
	Errors   flexNumber   `json:"errors"`
	Team     teamResponse `json:"team"`
}

type teamResponse struct {
	ID               flexString `json:"id"`
	Abbreviation     string     `json:"abbreviation"`
	ShortDisplayName string     `json:"shortDisplayName"`
	DisplayName      string     `json:"displayName"`
	Name             string     `json:"name"`
}

type statusResponse struct {
	Period       int                `json:"period"`
	DisplayClock string             `json:"displayClock"`
	Type         statusTypeResponse `json:"type"`
}

type statusTypeResponse struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	Completed   bool   `json:"completed"`
	Description string `json:"description"`
	Detail      string `json:"detail"`
	ShortDetail string `json:"shortDetail"`
}

type summaryResponse struct {
	Header   headerResponse   `json:"header"`
	BoxScore boxScoreResponse `json:"boxscore"`
}

type headerResponse struct {
	ID           flexString            `json:"id"`
	Competitions []competitionResponse `json:"competitions"`
}

type boxScoreResponse struct {
	Teams   []teamBlockResponse   `json:"teams"`
	Players []playerBlockResponse `json:"players"`
}

type teamBlockResponse struct {
	Team       teamResponse       `json:"team"`
	Statistics []teamStatResponse `json:"statistics"`
}

// teamStatResponse is either a flat stat (name + displayValue) or, for
// baseball, a named group holding nested stats.
type teamStatResponse struct {
	Name         string             `json:"name"`
	Label        string             `json:"label"`
	Abbreviation string             `json:"abbreviation"`
	DisplayValue flexString         `json:"displayValue"`
	Stats        []teamStatResponse `json:"stats"`
}

type playerBlockResponse struct {
	Team       teamResponse        `json:"team"`
	Statistics []statGroupResponse `json:"statistics"`
}

type statGroupResponse struct {
	Name     string               `json:"name"`
	Type     string               `json:"type"`
	Keys     []string             `json:"keys"`
	Names    []string             `json:"names"`
	Labels   []string             `json:"labels"`
	Athletes []athleteRowResponse `json:"athletes"`
}

type athleteRowResponse struct {
	Athlete    athleteResponse `json:"athlete"`
	Stats      []flexString    `json:"stats"`
	DidNotPlay bool            `json:"didNotPlay"`
}

type athleteResponse struct {
	ID          flexString `json:"id"`
	DisplayName string     `json:"displayName"`
	ShortName   string     `json:"shortName"`
	Position    struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
}
