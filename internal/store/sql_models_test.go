package store

import (
	"encoding/json"
	"testing"

	"github.com/preston-bernstein/prop-grader/internal/domain/props"
)

func TestPropRowKeepsFormulaParamsAndNilGradedAt(t *testing.T) {
	p := props.Prop{
		ID:            "p1",
		GradingMode:   props.ModeAuto,
		FormulaKey:    "player_h2h",
		FormulaParams: json.RawMessage(`{"metric":"H"}`),
		Status:        props.StatusClosed,
	}
	got := toPropRow(p).domain()
	if string(got.FormulaParams) != `{"metric":"H"}` || got.GradedAt != nil || got.GradingMode != props.ModeAuto {
		t.Fatalf("unexpected prop %+v", got)
	}

	empty := toPropRow(props.Prop{ID: "p2"})
	if empty.FormulaParams != nil {
		t.Fatalf("expected NULL params for empty prop, got %s", empty.FormulaParams)
	}
}

func TestTableNames(t *testing.T) {
	names := map[string]string{
		"events":       eventRow{}.TableName(),
		"props":        propRow{}.TableName(),
		"packs":        packRow{}.TableName(),
		"predictions":  predictionRow{}.TableName(),
		"h2h_matchups": matchupRow{}.TableName(),
	}
	for want, got := range names {
		if want != got {
			t.Fatalf("expected table %s, got %s", want, got)
		}
	}
}
