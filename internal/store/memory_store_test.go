package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/domain/h2h"
	"github.com/preston-bernstein/prop-grader/internal/domain/props"
)

func seed(t *testing.T, s *MemoryStore, fn func(Tx) error) {
	t.Helper()
	if err := s.InTx(context.Background(), fn); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if _, err := s.GetProp(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetEvent(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetPack(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetMatchup(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreFailedTxLeavesNoTrace(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seed(t, s, func(tx Tx) error {
		return tx.SaveProp(ctx, props.Prop{ID: "p1", Status: props.StatusClosed})
	})

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx Tx) error {
		if err := tx.SaveProp(ctx, props.Prop{ID: "p1", Status: props.StatusGradedA}); err != nil {
			return err
		}
		if got, _ := tx.GetProp(ctx, "p1"); got.Status != props.StatusGradedA {
			t.Fatalf("expected tx to read its own write, got %s", got.Status)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got, _ := s.GetProp(ctx, "p1"); got.Status != props.StatusClosed {
		t.Fatalf("expected rollback, got %s", got.Status)
	}
}

func TestMemoryStoreBestEffortIsolatesFailure(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.InTx(ctx, func(tx Tx) error {
		if err := tx.SaveProp(ctx, props.Prop{ID: "p1", PackID: "k1"}); err != nil {
			return err
		}
		nestedErr := tx.BestEffort(ctx, func(inner Tx) error {
			_ = inner.SavePack(ctx, props.Pack{ID: "k1", Status: props.PackGraded})
			return errors.New("pack check failed")
		})
		if nestedErr == nil {
			t.Fatal("expected nested error to surface")
		}
		return tx.BestEffort(ctx, func(inner Tx) error {
			return inner.SavePack(ctx, props.Pack{ID: "k2", Status: props.PackGraded})
		})
	})
	if err != nil {
		t.Fatalf("expected outer tx to commit, got %v", err)
	}
	if _, err := s.GetProp(ctx, "p1"); err != nil {
		t.Fatalf("expected prop committed, got %v", err)
	}
	if _, err := s.GetPack(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected failed best-effort write to be discarded, got %v", err)
	}
	if _, err := s.GetPack(ctx, "k2"); err != nil {
		t.Fatalf("expected successful best-effort write to commit, got %v", err)
	}
}

func TestMemoryStoreSingleLatestPerOwner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seed(t, s, func(tx Tx) error {
		return tx.SavePrediction(ctx, props.Prediction{ID: "a", PropID: "p1", OwnerID: "u1", Status: props.PredictionLatest})
	})

	err := s.InTx(ctx, func(tx Tx) error {
		return tx.SavePrediction(ctx, props.Prediction{ID: "b", PropID: "p1", OwnerID: "u1", Status: props.PredictionLatest})
	})
	if !errors.Is(err, ErrLatestConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	seed(t, s, func(tx Tx) error {
		if err := tx.SavePrediction(ctx, props.Prediction{ID: "a", PropID: "p1", OwnerID: "u1", Status: props.PredictionOverwritten}); err != nil {
			return err
		}
		return tx.SavePrediction(ctx, props.Prediction{ID: "b", PropID: "p1", OwnerID: "u1", Status: props.PredictionLatest})
	})
	preds, _ := s.ListPredictions(ctx, "p1")
	if len(preds) != 2 {
		t.Fatalf("expected both predictions kept, got %d", len(preds))
	}
}

func TestMemoryStoreListings(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2024, 7, 4, 20, 0, 0, 0, time.UTC)
	seed(t, s, func(tx Tx) error {
		_ = tx.SaveEvent(ctx, props.Event{ID: "past", ScheduledAt: now.Add(-3 * time.Hour)})
		_ = tx.SaveEvent(ctx, props.Event{ID: "future", ScheduledAt: now.Add(3 * time.Hour)})
		_ = tx.SaveProp(ctx, props.Prop{ID: "p2", PackID: "k", EventID: "past", GradingMode: props.ModeAuto, Status: props.StatusClosed})
		_ = tx.SaveProp(ctx, props.Prop{ID: "p1", PackID: "k", EventID: "past", GradingMode: props.ModeAuto, Status: props.StatusClosed})
		_ = tx.SaveProp(ctx, props.Prop{ID: "p3", PackID: "k", EventID: "future", GradingMode: props.ModeAuto, Status: props.StatusClosed})
		_ = tx.SaveProp(ctx, props.Prop{ID: "p4", PackID: "k", EventID: "past", GradingMode: props.ModeManual, Status: props.StatusClosed})
		_ = tx.SaveProp(ctx, props.Prop{ID: "p5", PackID: "other", EventID: "past", GradingMode: props.ModeAuto, Status: props.StatusGradedA})
		_ = tx.SavePrediction(ctx, props.Prediction{ID: "x", PropID: "p1", PackID: "k", OwnerID: "u", Status: props.PredictionLatest, CreatedAt: now})
		_ = tx.SavePrediction(ctx, props.Prediction{ID: "y", PropID: "p2", PackID: "k", OwnerID: "u", Status: props.PredictionOverwritten, CreatedAt: now})
		return tx.SaveMatchup(ctx, h2h.Matchup{ID: "m", Token: "tok", PackID: "k"})
	})

	gradable, _ := s.ListAutoGradable(ctx, now)
	if len(gradable) != 2 || gradable[0].ID != "p1" || gradable[1].ID != "p2" {
		t.Fatalf("unexpected auto-gradable props %+v", gradable)
	}
	members, _ := s.ListPackProps(ctx, "k")
	if len(members) != 4 {
		t.Fatalf("expected 4 pack members, got %d", len(members))
	}
	latest, _ := s.ListLatestPredictionsForPack(ctx, "k")
	if len(latest) != 1 || latest[0].ID != "x" {
		t.Fatalf("expected only latest prediction, got %+v", latest)
	}
	if m, err := s.GetMatchup(ctx, "tok"); err != nil || m.ID != "m" {
		t.Fatalf("expected matchup by token, got %+v %v", m, err)
	}
}

func TestMemoryStoreConcurrentTransactions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	seed(t, s, func(tx Tx) error { return tx.SavePack(ctx, props.Pack{ID: "k", Title: "0"}) })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.InTx(ctx, func(tx Tx) error {
				p, err := tx.GetPack(ctx, "k")
				if err != nil {
					return err
				}
				p.Title += "x"
				return tx.SavePack(ctx, p)
			})
			_, _ = s.GetPack(ctx, "k")
		}()
	}
	wg.Wait()

	p, _ := s.GetPack(ctx, "k")
	if len(p.Title) != 21 {
		t.Fatalf("expected serialized writers, got title %q", p.Title)
	}
}

func TestMemoryStoreCanceledContextDoesNotCommit(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	err := s.InTx(ctx, func(tx Tx) error {
		cancel()
		return tx.SavePack(ctx, props.Pack{ID: "k"})
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if _, err := s.GetPack(context.Background(), "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected nothing committed, got %v", err)
	}
}
