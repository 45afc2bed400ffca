package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/domain/props"
	"github.com/preston-bernstein/prop-grader/internal/store"
)

// SampleEvent returns a final-ready MLB event tied to upstream game g1.
func SampleEvent(id string) props.Event {
	return props.Event{
		ID:             id,
		League:         "mlb",
		ScheduledAt:    time.Date(2024, 7, 4, 23, 5, 0, 0, time.UTC),
		UpstreamGameID: "g1",
		HomeTeam:       "NYY",
		AwayTeam:       "BOS",
	}
}

// SampleProp returns a closed auto-graded who_wins prop with side A on the
// home team.
func SampleProp(id, packID, eventID string) props.Prop {
	return props.Prop{
		ID:            id,
		PackID:        packID,
		EventID:       eventID,
		SideALabel:    "Yankees",
		SideBLabel:    "Red Sox",
		SideAValue:    10,
		SideBValue:    20,
		GradingMode:   props.ModeAuto,
		FormulaKey:    "who_wins",
		FormulaParams: json.RawMessage(`{"sideA":"home"}`),
		Status:        props.StatusClosed,
	}
}

// SeedStore commits fn against st, failing the test on error.
func SeedStore(t *testing.T, st store.Store, fn func(ctx context.Context, tx store.Tx) error) {
	t.Helper()
	ctx := context.Background()
	if err := st.InTx(ctx, func(tx store.Tx) error { return fn(ctx, tx) }); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}

// NewSeededStore returns a memory store with one pack, event and prop.
func NewSeededStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	SeedStore(t, st, func(ctx context.Context, tx store.Tx) error {
		if err := tx.SavePack(ctx, props.Pack{ID: "k1", Status: props.PackClosed}); err != nil {
			return err
		}
		if err := tx.SaveEvent(ctx, SampleEvent("e1")); err != nil {
			return err
		}
		return tx.SaveProp(ctx, SampleProp("p1", "k1", "e1"))
	})
	return st
}
