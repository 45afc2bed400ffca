package predictions

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/preston-bernstein/prop-grader/internal/domain/props"
	"github.com/preston-bernstein/prop-grader/internal/failure"
	"github.com/preston-bernstein/prop-grader/internal/store"
	"github.com/preston-bernstein/prop-grader/internal/testutil"
)

func newService(t *testing.T, status props.Status) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	ctx := context.Background()
	if err := st.InTx(ctx, func(tx store.Tx) error {
		return tx.SaveProp(ctx, props.Prop{ID: "p1", PackID: "k1", Status: status})
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewService(st, nil)
	n := 0
	var mu sync.Mutex
	svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("pred-%d", n)
	}
	svc.now = testutil.FixedClock(t, "2024-07-04T12:00:00Z")
	return svc, st
}

func latestCount(t *testing.T, st store.Reader, owner string) int {
	t.Helper()
	preds, err := st.ListPredictions(context.Background(), "p1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	n := 0
	for _, p := range preds {
		if p.OwnerID == owner && p.Status == props.PredictionLatest {
			n++
		}
	}
	return n
}

func TestPlaceOverwritesPreviousLatest(t *testing.T) {
	svc, st := newService(t, props.StatusOpen)
	ctx := context.Background()

	first, err := svc.Place(ctx, PlaceRequest{PropID: "p1", OwnerID: "u1", Side: "a"})
	if err != nil {
		t.Fatalf("first place: %v", err)
	}
	if first.Side != props.SideA || first.PackID != "k1" || first.Result != props.ResultPending || !first.CreatedAt.Equal(svc.now()) {
		t.Fatalf("unexpected prediction %+v", first)
	}
	second, err := svc.Place(ctx, PlaceRequest{PropID: "p1", OwnerID: "u1", Side: "B"})
	if err != nil {
		t.Fatalf("second place: %v", err)
	}

	preds, _ := st.ListPredictions(ctx, "p1")
	if len(preds) != 2 {
		t.Fatalf("expected history kept, got %d", len(preds))
	}
	for _, p := range preds {
		switch p.ID {
		case first.ID:
			if p.Status != props.PredictionOverwritten {
				t.Fatalf("expected first overwritten, got %s", p.Status)
			}
		case second.ID:
			if p.Status != props.PredictionLatest {
				t.Fatalf("expected second latest, got %s", p.Status)
			}
		}
	}
}

func TestPlaceKeepsOneLatestUnderConcurrency(t *testing.T) {
	svc, st := newService(t, props.StatusOpen)
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			side := props.SideA
			if i%2 == 0 {
				side = props.SideB
			}
			_, _ = svc.Place(context.Background(), PlaceRequest{PropID: "p1", OwnerID: "u1", Side: side})
		}(i)
	}
	wg.Wait()
	if n := latestCount(t, st, "u1"); n != 1 {
		t.Fatalf("expected exactly one latest, got %d", n)
	}
}

func TestPlaceValidation(t *testing.T) {
	svc, _ := newService(t, props.StatusClosed)
	ctx := context.Background()

	cases := []struct {
		name string
		req  PlaceRequest
		kind failure.Kind
	}{
		{"missing owner", PlaceRequest{PropID: "p1", Side: "A"}, failure.KindValidation},
		{"bad side", PlaceRequest{PropID: "p1", OwnerID: "u", Side: "home"}, failure.KindValidation},
		{"closed prop", PlaceRequest{PropID: "p1", OwnerID: "u", Side: "A"}, failure.KindValidation},
		{"unknown prop", PlaceRequest{PropID: "nope", OwnerID: "u", Side: "A"}, failure.KindNotFound},
	}
	for _, tc := range cases {
		if _, err := svc.Place(ctx, tc.req); !failure.Is(err, tc.kind) {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.kind, err)
		}
	}
}
