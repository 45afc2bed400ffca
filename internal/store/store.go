package store

import (
	"context"
	"errors"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/domain/h2h"
	"github.com/preston-bernstein/prop-grader/internal/domain/props"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrLatestConflict is returned when a second latest prediction would exist
	// for one (prop, owner) pair.
	ErrLatestConflict = errors.New("latest prediction already exists for prop and owner")
)

// Reader is the read side shared by stores and transactions.
type Reader interface {
	GetProp(ctx context.Context, id string) (props.Prop, error)
	GetEvent(ctx context.Context, id string) (props.Event, error)
	GetPack(ctx context.Context, id string) (props.Pack, error)
	ListPackProps(ctx context.Context, packID string) ([]props.Prop, error)
	ListPredictions(ctx context.Context, propID string) ([]props.Prediction, error)
	ListLatestPredictionsForPack(ctx context.Context, packID string) ([]props.Prediction, error)
	// ListAutoGradable returns closed auto-mode props whose event started
	// before the cutoff.
	ListAutoGradable(ctx context.Context, startedBefore time.Time) ([]props.Prop, error)
	GetMatchup(ctx context.Context, token string) (h2h.Matchup, error)
}

// Tx is a unit of work. Nothing written through it is visible to other
// readers until the enclosing InTx returns nil.
type Tx interface {
	Reader
	SaveEvent(ctx context.Context, e props.Event) error
	SaveProp(ctx context.Context, p props.Prop) error
	SavePack(ctx context.Context, p props.Pack) error
	SavePrediction(ctx context.Context, p props.Prediction) error
	SaveMatchup(ctx context.Context, m h2h.Matchup) error
	// BestEffort runs fn in a nested scope. When fn fails its writes are
	// discarded and the error returned, but the outer transaction stays usable.
	BestEffort(ctx context.Context, fn func(Tx) error) error
}

// Store is a transactional backend for props, predictions, packs and
// matchups.
type Store interface {
	Reader
	InTx(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}
