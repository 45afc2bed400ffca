package predictions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/prop-grader/internal/domain/props"
	"github.com/preston-bernstein/prop-grader/internal/failure"
	"github.com/preston-bernstein/prop-grader/internal/logging"
	"github.com/preston-bernstein/prop-grader/internal/store"
)

// PlaceRequest is one owner's take on a prop.
type PlaceRequest struct {
	PropID  string     `json:"propId"`
	OwnerID string     `json:"ownerId"`
	Side    props.Side `json:"side"`
}

// Service records predictions, keeping at most one latest take per owner.
type Service struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewService constructs a prediction service.
func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Place records a new latest prediction and overwrites the owner's previous
// one on the same prop. The prop must be open.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (props.Prediction, error) {
	const op = "predictions.Place"
	req.PropID = strings.TrimSpace(req.PropID)
	req.OwnerID = strings.TrimSpace(req.OwnerID)
	if req.PropID == "" || req.OwnerID == "" {
		return props.Prediction{}, failure.Validation(op, "propId and ownerId are required")
	}
	side, ok := props.ParseSide(string(req.Side))
	if !ok {
		return props.Prediction{}, failure.Validation(op, "side must be A or B, got %q", req.Side)
	}

	var placed props.Prediction
	var replaced int
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		replaced = 0
		prop, err := tx.GetProp(ctx, req.PropID)
		if err != nil {
			return err
		}
		if prop.Status != props.StatusOpen {
			return failure.Validation(op, "prop %s is %s; predictions require an open prop", prop.ID, prop.Status)
		}

		existing, err := tx.ListPredictions(ctx, prop.ID)
		if err != nil {
			return fmt.Errorf("list predictions: %w", err)
		}
		for _, p := range existing {
			if p.OwnerID != req.OwnerID || p.Status != props.PredictionLatest {
				continue
			}
			p.Status = props.PredictionOverwritten
			if err := tx.SavePrediction(ctx, p); err != nil {
				return fmt.Errorf("overwrite prediction %s: %w", p.ID, err)
			}
			replaced++
		}

		placed = props.Prediction{
			ID:        s.newID(),
			PropID:    prop.ID,
			PackID:    prop.PackID,
			OwnerID:   req.OwnerID,
			Side:      side,
			Status:    props.PredictionLatest,
			Result:    props.ResultPending,
			CreatedAt: s.now().UTC(),
		}
		return tx.SavePrediction(ctx, placed)
	})

	var fe *failure.Error
	switch {
	case err == nil:
	case errors.As(err, &fe):
		return props.Prediction{}, err
	case errors.Is(err, store.ErrNotFound):
		return props.Prediction{}, failure.NotFound(op, "prop "+req.PropID)
	case errors.Is(err, store.ErrLatestConflict):
		return props.Prediction{}, failure.Validation(op, "a concurrent prediction for owner %s won; retry", req.OwnerID)
	default:
		return props.Prediction{}, failure.Cascade(op, err)
	}

	logging.Info(logging.FromContext(ctx, s.logger), "prediction placed",
		logging.FieldPropID, placed.PropID,
		"owner_id", placed.OwnerID,
		"side", string(placed.Side),
		"replaced", replaced,
	)
	return placed, nil
}
