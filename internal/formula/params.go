package formula

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/preston-bernstein/prop-grader/internal/domain/stats"
	"github.com/preston-bernstein/prop-grader/internal/failure"
)

// GameRef locates the game a formula reads. Unset fields fall back to the
// prop's event: GameID to its upstream id, Date to its local start date.
type GameRef struct {
	GameID     string `json:"gameId,omitempty"`
	Date       string `json:"date,omitempty"`
	Year       int    `json:"year,omitempty"`
	Week       int    `json:"week,omitempty"`
	SeasonType int    `json:"seasonType,omitempty"`
}

// Weekly reports whether a season week was supplied.
func (g GameRef) Weekly() bool {
	return g.Year > 0 && g.Week > 0
}

// Subject names the player or team a metric is read for. Team may be an
// abbreviation, a team id, or "home"/"away".
type Subject struct {
	Player string `json:"player,omitempty"`
	Team   string `json:"team,omitempty"`
}

func (s Subject) label() string {
	if s.Player != "" {
		return s.Player
	}
	return s.Team
}

type entityKind string

const (
	entityPlayer entityKind = "player"
	entityTeam   entityKind = "team"
)

func (s Subject) validate(field string, entity entityKind) error {
	switch entity {
	case entityPlayer:
		if strings.TrimSpace(s.Player) == "" {
			return fmt.Errorf("%s.player is required", field)
		}
	case entityTeam:
		if strings.TrimSpace(s.Team) == "" {
			return fmt.Errorf("%s.team is required", field)
		}
	}
	return nil
}

// WhoWinsParams maps the game's home/away sides onto the prop's sides. Each
// mapping is "home", "away" or a team abbreviation. SideB defaults to the
// opposite of SideA.
type WhoWinsParams struct {
	GameRef
	SideA string `json:"sideA"`
	SideB string `json:"sideB,omitempty"`
}

func (p WhoWinsParams) Validate() error {
	if strings.TrimSpace(p.SideA) == "" {
		return fmt.Errorf("sideA is required")
	}
	if p.SideB != "" && strings.EqualFold(strings.TrimSpace(p.SideA), strings.TrimSpace(p.SideB)) {
		return fmt.Errorf("sideA and sideB must differ")
	}
	return nil
}

// OverUnderParams compares one entity's metric, or the sum of several, with
// an independent band per side.
type OverUnderParams struct {
	GameRef
	Subject
	Entity  string   `json:"entity,omitempty"`
	Metric  string   `json:"metric,omitempty"`
	Metrics []string `json:"metrics,omitempty"`
	SideA   Band     `json:"sideA"`
	SideB   Band     `json:"sideB"`
}

func (p OverUnderParams) entity() entityKind {
	switch strings.ToLower(strings.TrimSpace(p.Entity)) {
	case string(entityPlayer):
		return entityPlayer
	case string(entityTeam):
		return entityTeam
	}
	if p.Player != "" {
		return entityPlayer
	}
	return entityTeam
}

func (p OverUnderParams) Validate(multi bool, entity entityKind) error {
	if e := strings.ToLower(strings.TrimSpace(p.Entity)); e != "" && e != string(entityPlayer) && e != string(entityTeam) {
		return fmt.Errorf("entity %q must be player or team", p.Entity)
	}
	if err := p.Subject.validate("subject", entity); err != nil {
		return err
	}
	if err := validateMetrics(p.Metric, p.Metrics, multi); err != nil {
		return err
	}
	if err := p.SideA.validate("sideA"); err != nil {
		return err
	}
	return p.SideB.validate("sideB")
}

// HeadToHeadParams compares the same metric, or sum of metrics, for two
// entities of one kind.
type HeadToHeadParams struct {
	GameRef
	Metric     string   `json:"metric,omitempty"`
	Metrics    []string `json:"metrics,omitempty"`
	SideA      Subject  `json:"sideA"`
	SideB      Subject  `json:"sideB"`
	WinnerRule string   `json:"winnerRule,omitempty"`
}

func (p HeadToHeadParams) Validate(multi bool, entity entityKind) error {
	if err := p.SideA.validate("sideA", entity); err != nil {
		return err
	}
	if err := p.SideB.validate("sideB", entity); err != nil {
		return err
	}
	if err := validateMetrics(p.Metric, p.Metrics, multi); err != nil {
		return err
	}
	if _, ok := parseWinnerRule(p.WinnerRule); !ok {
		return fmt.Errorf("winnerRule %q must be higher or lower", p.WinnerRule)
	}
	return nil
}

func validateMetrics(single string, many []string, multi bool) error {
	if !multi {
		if strings.TrimSpace(single) == "" {
			return fmt.Errorf("metric is required")
		}
		return nil
	}
	seen := map[string]bool{}
	for _, m := range many {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			return fmt.Errorf("metrics must not contain blanks")
		}
		seen[m] = true
	}
	if len(seen) < 2 {
		return fmt.Errorf("metrics needs at least two distinct entries")
	}
	return nil
}

// resolveMetrics maps user-supplied keys through the league vocabulary, the
// same function ingestion uses.
func resolveMetrics(vocab stats.Vocabulary, single string, many []string, multi bool) []stats.Metric {
	if !multi {
		return []stats.Metric{vocab.Resolve(single)}
	}
	out := make([]stats.Metric, 0, len(many))
	for _, m := range many {
		out = append(out, vocab.Resolve(m))
	}
	return out
}

// decodeParams unmarshals raw into dst. Empty params decode as an empty object
// so Validate can name the missing field.
func decodeParams(op string, raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return failure.Validation(op, "malformed formula params: %v", err)
	}
	return nil
}

// MergeParams shallow-merges override keys onto base. Both must be JSON
// objects; an override value of null removes the key.
func MergeParams(base, override json.RawMessage) (json.RawMessage, error) {
	merged := map[string]json.RawMessage{}
	for _, raw := range []json.RawMessage{base, override} {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, failure.Validation("formula.MergeParams", "params must be a JSON object: %v", err)
		}
		for k, v := range obj {
			if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				delete(merged, k)
				continue
			}
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}
