package h2h

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainh2h "github.com/preston-bernstein/prop-grader/internal/domain/h2h"
	"github.com/preston-bernstein/prop-grader/internal/failure"
	"github.com/preston-bernstein/prop-grader/internal/logging"
	"github.com/preston-bernstein/prop-grader/internal/store"
)

// CreateRequest opens a matchup on a pack.
type CreateRequest struct {
	PackID    string `json:"packId"`
	OwnerID   string `json:"ownerId"`
	Bonus     int64  `json:"bonus"`
	TiePolicy string `json:"tiePolicy,omitempty"`
}

// Preview is a matchup's standings computed without persisting anything.
type Preview struct {
	Matchup domainh2h.Matchup `json:"matchup"`
	Outcome domainh2h.Outcome `json:"outcome"`
}

// Service manages head-to-head matchups.
type Service struct {
	store    store.Store
	logger   *slog.Logger
	now      func() time.Time
	newToken func() string
}

// NewService constructs a matchup service.
func NewService(st store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:    st,
		logger:   logger,
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// Create opens a pending matchup and returns it with its shareable token.
func (s *Service) Create(ctx context.Context, req CreateRequest) (domainh2h.Matchup, error) {
	const op = "h2h.Create"
	req.PackID = strings.TrimSpace(req.PackID)
	req.OwnerID = strings.TrimSpace(req.OwnerID)
	if req.PackID == "" || req.OwnerID == "" {
		return domainh2h.Matchup{}, failure.Validation(op, "packId and ownerId are required")
	}
	if req.Bonus < 0 {
		return domainh2h.Matchup{}, failure.Validation(op, "bonus must not be negative")
	}
	policy, ok := domainh2h.ParseTiePolicy(strings.ToLower(strings.TrimSpace(req.TiePolicy)))
	if !ok {
		return domainh2h.Matchup{}, failure.Validation(op, "tiePolicy must be split, both or none, got %q", req.TiePolicy)
	}

	token := s.newToken()
	m := domainh2h.Matchup{
		ID:           token,
		Token:        token,
		PackID:       req.PackID,
		ParticipantA: req.OwnerID,
		Status:       domainh2h.StatusPending,
		Bonus:        req.Bonus,
		TiePolicy:    policy,
		CreatedAt:    s.now().UTC(),
	}
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.GetPack(ctx, req.PackID); err != nil {
			return err
		}
		return tx.SaveMatchup(ctx, m)
	})
	if err != nil {
		return domainh2h.Matchup{}, mapErr(op, "pack "+req.PackID, err)
	}
	logging.Info(logging.FromContext(ctx, s.logger), "matchup created", logging.FieldMatchup, token, logging.FieldPackID, req.PackID)
	return m, nil
}

// Accept sets the second participant.
func (s *Service) Accept(ctx context.Context, token, ownerID string) (domainh2h.Matchup, error) {
	const op = "h2h.Accept"
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domainh2h.Matchup{}, failure.Validation(op, "ownerId is required")
	}

	var out domainh2h.Matchup
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		m, err := tx.GetMatchup(ctx, token)
		if err != nil {
			return err
		}
		switch {
		case m.ParticipantA == ownerID:
			return failure.Validation(op, "owner %s cannot accept their own matchup", ownerID)
		case m.ParticipantB == ownerID:
			out = m
			return nil
		case m.ParticipantB != "":
			return failure.Validation(op, "matchup %s already has two participants", token)
		}
		m.ParticipantB = ownerID
		m.Status = domainh2h.StatusAccepted
		out = m
		return tx.SaveMatchup(ctx, m)
	})
	if err != nil {
		return domainh2h.Matchup{}, mapErr(op, "matchup "+token, err)
	}
	return out, nil
}

// Preview computes current standings without persisting them.
func (s *Service) Preview(ctx context.Context, token string) (Preview, error) {
	const op = "h2h.Preview"
	var out Preview
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		m, outcome, err := settle(ctx, op, tx, token)
		if err != nil {
			return err
		}
		out = Preview{Matchup: m, Outcome: outcome}
		return errDiscard
	})
	if err != nil && !errors.Is(err, errDiscard) {
		return Preview{}, mapErr(op, "matchup "+token, err)
	}
	return out, nil
}

// Finalize settles the matchup and stores the outcome. Re-running it
// recomputes and overwrites the previous result.
func (s *Service) Finalize(ctx context.Context, token string) (domainh2h.Matchup, error) {
	const op = "h2h.Finalize"
	var out domainh2h.Matchup
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		m, outcome, err := settle(ctx, op, tx, token)
		if err != nil {
			return err
		}
		out = m.Apply(outcome, s.now().UTC())
		return tx.SaveMatchup(ctx, out)
	})
	if err != nil {
		return domainh2h.Matchup{}, mapErr(op, "matchup "+token, err)
	}
	logging.Info(logging.FromContext(ctx, s.logger), "matchup finalized",
		logging.FieldMatchup, token,
		logging.FieldPackID, out.PackID,
		"winner_id", out.WinnerID,
		"bonus_a", out.BonusA,
		"bonus_b", out.BonusB,
	)
	return out, nil
}

// errDiscard rolls back a read-only transaction.
var errDiscard = errors.New("discard")

func settle(ctx context.Context, op string, tx store.Tx, token string) (domainh2h.Matchup, domainh2h.Outcome, error) {
	m, err := tx.GetMatchup(ctx, token)
	if err != nil {
		return m, domainh2h.Outcome{}, err
	}
	if !m.Ready() {
		return m, domainh2h.Outcome{}, failure.Validation(op, "matchup %s is waiting for a second participant", token)
	}
	preds, err := tx.ListLatestPredictionsForPack(ctx, m.PackID)
	if err != nil {
		return m, domainh2h.Outcome{}, fmt.Errorf("list predictions: %w", err)
	}
	a := domainh2h.TallyFor(m.ParticipantA, preds)
	b := domainh2h.TallyFor(m.ParticipantB, preds)
	return m, domainh2h.Settle(m, a, b), nil
}

func mapErr(op, entity string, err error) error {
	var fe *failure.Error
	switch {
	case errors.As(err, &fe):
		return err
	case errors.Is(err, store.ErrNotFound):
		return failure.NotFound(op, entity)
	default:
		return failure.Cascade(op, err)
	}
}
