package formula

import (
	"context"
	"sort"
	"sync"

	"github.com/preston-bernstein/prop-grader/internal/domain/props"
	"github.com/preston-bernstein/prop-grader/internal/failure"
)

// Registry dispatches a formula key to its evaluator.
type Registry struct {
	mu         sync.RWMutex
	evaluators map[Kind]Evaluator
}

// NewRegistry returns a registry with every built-in kind registered.
func NewRegistry() *Registry {
	r := &Registry{evaluators: map[Kind]Evaluator{}}
	for _, e := range []Evaluator{
		WhoWins{},
		StatOverUnder(),
		PlayerH2H(),
		TeamStatH2H(),
		PlayerMultiStatOU(),
		TeamMultiStatOU(),
		PlayerMultiStatH2H(),
		TeamMultiStatH2H(),
	} {
		r.Register(e)
	}
	return r
}

// Register adds or replaces the evaluator for its kind.
func (r *Registry) Register(e Evaluator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evaluators[e.Kind()] = e
}

// Lookup resolves a stored formula key.
func (r *Registry) Lookup(key string) (Evaluator, error) {
	kind := ParseKind(key)
	if kind == "" {
		return nil, failure.Validation("formula.Lookup", "formula key is required")
	}
	r.mu.RLock()
	e, ok := r.evaluators[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, failure.Validation("formula.Lookup", "unknown formula %q", key)
	}
	return e, nil
}

// Kinds lists the registered formula keys in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kind, 0, len(r.evaluators))
	for k := range r.evaluators {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Evaluate validates params and runs the evaluator for key.
func (r *Registry) Evaluate(ctx context.Context, key string, req Request) (props.Verdict, error) {
	e, err := r.Lookup(key)
	if err != nil {
		return props.Verdict{}, err
	}
	if req.Source == nil {
		return props.Verdict{}, failure.Validation("formula.Evaluate", "no data source for league %q", req.League)
	}
	if err := e.Validate(req); err != nil {
		return props.Verdict{}, err
	}
	return e.Evaluate(ctx, req)
}
