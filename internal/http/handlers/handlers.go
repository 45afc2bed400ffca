package handlers

import (
	"context"
	"log/slog"
	nethttp "net/http"

	"github.com/preston-bernstein/prop-grader/internal/app/grading"
	apph2h "github.com/preston-bernstein/prop-grader/internal/app/h2h"
	"github.com/preston-bernstein/prop-grader/internal/app/predictions"
	"github.com/preston-bernstein/prop-grader/internal/domain/h2h"
	"github.com/preston-bernstein/prop-grader/internal/domain/props"
)

// Grader is the grading surface used by the admin routes.
type Grader interface {
	Grade(ctx context.Context, propID string, opts grading.Options) (grading.Result, error)
	GradeManual(ctx context.Context, propID string, verdict props.Verdict) (grading.Result, error)
	CheckPack(ctx context.Context, packID string) (bool, error)
}

// Matchups manages head-to-head matchups.
type Matchups interface {
	Create(ctx context.Context, req apph2h.CreateRequest) (h2h.Matchup, error)
	Accept(ctx context.Context, token, ownerID string) (h2h.Matchup, error)
	Preview(ctx context.Context, token string) (apph2h.Preview, error)
	Finalize(ctx context.Context, token string) (h2h.Matchup, error)
}

// Predictions records takes.
type Predictions interface {
	Place(ctx context.Context, req predictions.PlaceRequest) (props.Prediction, error)
}

// ReadyCheck reports why the service cannot take traffic, or nil.
type ReadyCheck func(ctx context.Context) error

// Handler wires HTTP routes to the grading services.
type Handler struct {
	grader      Grader
	matchups    Matchups
	predictions Predictions
	ready       ReadyCheck
	logger      *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(grader Grader, matchups Matchups, preds Predictions, ready ReadyCheck, logger *slog.Logger) *Handler {
	return &Handler{
		grader:      grader,
		matchups:    matchups,
		predictions: preds,
		ready:       ready,
		logger:      logger,
	}
}

// Health reports process liveness.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			writeError(w, r, nethttp.StatusServiceUnavailable, err.Error(), h.logger)
			return
		}
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
}

// NotFound is the JSON fallback for unknown routes.
func (h *Handler) NotFound(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeError(w, r, nethttp.StatusNotFound, "not found", h.logger)
}

// MethodNotAllowed is the JSON fallback for known routes hit with the wrong verb.
func (h *Handler) MethodNotAllowed(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed", h.logger)
}
