package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/domain/h2h"
	"github.com/preston-bernstein/prop-grader/internal/domain/props"
)

// state is one consistent view of every collection.
type state struct {
	events      map[string]props.Event
	props       map[string]props.Prop
	packs       map[string]props.Pack
	predictions map[string]props.Prediction
	matchups    map[string]h2h.Matchup
}

func newState() *state {
	return &state{
		events:      map[string]props.Event{},
		props:       map[string]props.Prop{},
		packs:       map[string]props.Pack{},
		predictions: map[string]props.Prediction{},
		matchups:    map[string]h2h.Matchup{},
	}
}

func (s *state) clone() *state {
	out := &state{
		events:      make(map[string]props.Event, len(s.events)),
		props:       make(map[string]props.Prop, len(s.props)),
		packs:       make(map[string]props.Pack, len(s.packs)),
		predictions: make(map[string]props.Prediction, len(s.predictions)),
		matchups:    make(map[string]h2h.Matchup, len(s.matchups)),
	}
	for k, v := range s.events {
		out.events[k] = v
	}
	for k, v := range s.props {
		out.props[k] = v
	}
	for k, v := range s.packs {
		out.packs[k] = v
	}
	for k, v := range s.predictions {
		out.predictions[k] = v
	}
	for k, v := range s.matchups {
		out.matchups[k] = v
	}
	return out
}

// MemoryStore keeps every document in memory. Transactions work on a
// copy-on-write clone that replaces the live state only on success, so
// readers never see a half-applied cascade.
type MemoryStore struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *state
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newState()}
}

func (s *MemoryStore) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// InTx serializes writers. fn sees its own writes; the live state is swapped
// only when fn returns nil.
func (s *MemoryStore) InTx(ctx context.Context, fn func(Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memoryTx{memoryReader{s.snapshot().clone()}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = tx.st
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) reader() memoryReader {
	return memoryReader{s.snapshot()}
}

func (s *MemoryStore) GetProp(ctx context.Context, id string) (props.Prop, error) {
	return s.reader().GetProp(ctx, id)
}

func (s *MemoryStore) GetEvent(ctx context.Context, id string) (props.Event, error) {
	return s.reader().GetEvent(ctx, id)
}

func (s *MemoryStore) GetPack(ctx context.Context, id string) (props.Pack, error) {
	return s.reader().GetPack(ctx, id)
}

func (s *MemoryStore) ListPackProps(ctx context.Context, packID string) ([]props.Prop, error) {
	return s.reader().ListPackProps(ctx, packID)
}

func (s *MemoryStore) ListPredictions(ctx context.Context, propID string) ([]props.Prediction, error) {
	return s.reader().ListPredictions(ctx, propID)
}

func (s *MemoryStore) ListLatestPredictionsForPack(ctx context.Context, packID string) ([]props.Prediction, error) {
	return s.reader().ListLatestPredictionsForPack(ctx, packID)
}

func (s *MemoryStore) ListAutoGradable(ctx context.Context, startedBefore time.Time) ([]props.Prop, error) {
	return s.reader().ListAutoGradable(ctx, startedBefore)
}

func (s *MemoryStore) GetMatchup(ctx context.Context, token string) (h2h.Matchup, error) {
	return s.reader().GetMatchup(ctx, token)
}

// memoryReader answers queries against one state. The live state is never
// mutated in place, so readers need no lock beyond grabbing the pointer.
type memoryReader struct {
	st *state
}

func (r memoryReader) GetProp(_ context.Context, id string) (props.Prop, error) {
	p, ok := r.st.props[id]
	if !ok {
		return props.Prop{}, ErrNotFound
	}
	return p, nil
}

func (r memoryReader) GetEvent(_ context.Context, id string) (props.Event, error) {
	e, ok := r.st.events[id]
	if !ok {
		return props.Event{}, ErrNotFound
	}
	return e, nil
}

func (r memoryReader) GetPack(_ context.Context, id string) (props.Pack, error) {
	p, ok := r.st.packs[id]
	if !ok {
		return props.Pack{}, ErrNotFound
	}
	return p, nil
}

func (r memoryReader) ListPackProps(_ context.Context, packID string) ([]props.Prop, error) {
	var out []props.Prop
	for _, p := range r.st.props {
		if p.PackID == packID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryReader) ListPredictions(_ context.Context, propID string) ([]props.Prediction, error) {
	return r.predictions(func(p props.Prediction) bool { return p.PropID == propID }), nil
}

func (r memoryReader) ListLatestPredictionsForPack(_ context.Context, packID string) ([]props.Prediction, error) {
	return r.predictions(func(p props.Prediction) bool {
		return p.PackID == packID && p.Status == props.PredictionLatest
	}), nil
}

func (r memoryReader) predictions(keep func(props.Prediction) bool) []props.Prediction {
	var out []props.Prediction
	for _, p := range r.st.predictions {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r memoryReader) ListAutoGradable(_ context.Context, startedBefore time.Time) ([]props.Prop, error) {
	var out []props.Prop
	for _, p := range r.st.props {
		if p.GradingMode != props.ModeAuto || p.Status != props.StatusClosed {
			continue
		}
		ev, ok := r.st.events[p.EventID]
		if !ok || ev.ScheduledAt.IsZero() || ev.ScheduledAt.After(startedBefore) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryReader) GetMatchup(_ context.Context, token string) (h2h.Matchup, error) {
	m, ok := r.st.matchups[token]
	if !ok {
		return h2h.Matchup{}, ErrNotFound
	}
	return m, nil
}

type memoryTx struct {
	memoryReader
}

func (t *memoryTx) SaveEvent(_ context.Context, e props.Event) error {
	t.st.events[e.ID] = e
	return nil
}

func (t *memoryTx) SaveProp(_ context.Context, p props.Prop) error {
	t.st.props[p.ID] = p
	return nil
}

func (t *memoryTx) SavePack(_ context.Context, p props.Pack) error {
	t.st.packs[p.ID] = p
	return nil
}

// SavePrediction enforces at most one latest prediction per (prop, owner).
func (t *memoryTx) SavePrediction(_ context.Context, p props.Prediction) error {
	if p.Status == props.PredictionLatest {
		for id, other := range t.st.predictions {
			if id != p.ID && other.PropID == p.PropID && other.OwnerID == p.OwnerID && other.Status == props.PredictionLatest {
				return ErrLatestConflict
			}
		}
	}
	t.st.predictions[p.ID] = p
	return nil
}

func (t *memoryTx) SaveMatchup(_ context.Context, m h2h.Matchup) error {
	t.st.matchups[m.Token] = m
	return nil
}

func (t *memoryTx) BestEffort(_ context.Context, fn func(Tx) error) error {
	nested := &memoryTx{memoryReader{t.st.clone()}}
	if err := fn(nested); err != nil {
		return err
	}
	t.st = nested.st
	return nil
}
