package grading

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/prop-grader/internal/domain/props"
	"github.com/preston-bernstein/prop-grader/internal/failure"
	"github.com/preston-bernstein/prop-grader/internal/logging"
	"github.com/preston-bernstein/prop-grader/internal/store"
)

// cascade applies verdict to the prop and its latest predictions in one
// transaction. The pack check runs in a nested best-effort scope: its failure
// is logged and leaves the prop and predictions committed.
func (s *Service) cascade(ctx context.Context, op, propID string, verdict props.Verdict, res *Result) error {
	logger := logging.FromContext(ctx, s.logger)
	gradedAt := s.now().UTC()

	var graded int
	var packGraded bool
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		graded, packGraded = 0, false

		prop, err := tx.GetProp(ctx, propID)
		if err != nil {
			return err
		}
		prop.Status = verdict.Status()
		prop.ResultText = verdict.ResultText
		prop.GradedAt = &gradedAt
		if err := tx.SaveProp(ctx, prop); err != nil {
			return fmt.Errorf("save prop: %w", err)
		}

		preds, err := tx.ListPredictions(ctx, propID)
		if err != nil {
			return fmt.Errorf("list predictions: %w", err)
		}
		for _, p := range preds {
			if p.Status != props.PredictionLatest {
				continue
			}
			if err := tx.SavePrediction(ctx, p.Grade(prop, verdict, s.pushPoints)); err != nil {
				return fmt.Errorf("save prediction %s: %w", p.ID, err)
			}
			graded++
		}

		if prop.PackID == "" {
			return nil
		}
		packErr := tx.BestEffort(ctx, func(inner store.Tx) error {
			var err error
			packGraded, err = checkPack(ctx, inner, prop.PackID, s.logger)
			return err
		})
		if packErr != nil {
			packGraded = false
			logging.Warn(logger, "pack check failed",
				logging.FieldPackID, prop.PackID,
				logging.FieldPropID, propID,
				"error", packErr,
			)
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return failure.NotFound(op, "prop "+propID)
	}
	if err != nil {
		return failure.Cascade(op, err)
	}

	res.PropStatus = verdict.Status()
	res.PredictionsGraded = graded
	res.PackGraded = packGraded
	return nil
}

// checkPack flips the pack to graded once every member prop is terminal.
func checkPack(ctx context.Context, tx store.Tx, packID string, logger *slog.Logger) (bool, error) {
	pack, err := tx.GetPack(ctx, packID)
	if err != nil {
		return false, err
	}
	members, err := tx.ListPackProps(ctx, packID)
	if err != nil {
		return false, fmt.Errorf("list pack props: %w", err)
	}
	if !props.PackComplete(members) {
		return false, nil
	}
	if pack.Status == props.PackGraded {
		return true, nil
	}
	pack.Status = props.PackGraded
	if err := tx.SavePack(ctx, pack); err != nil {
		return false, fmt.Errorf("save pack: %w", err)
	}
	logging.Info(logging.FromContext(ctx, logger), "pack graded", logging.FieldPackID, packID, logging.FieldCount, len(members))
	return true, nil
}
