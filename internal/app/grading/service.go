package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/domain/props"
	"github.com/preston-bernstein/prop-grader/internal/failure"
	"github.com/preston-bernstein/prop-grader/internal/formula"
	"github.com/preston-bernstein/prop-grader/internal/logging"
	"github.com/preston-bernstein/prop-grader/internal/metrics"
	"github.com/preston-bernstein/prop-grader/internal/store"
)

// Engine evaluates a formula key against normalized data.
type Engine interface {
	Evaluate(ctx context.Context, key string, req formula.Request) (props.Verdict, error)
}

// Options tune a single grading call.
type Options struct {
	DryRun          bool
	FormulaOverride string
	ParamOverrides  json.RawMessage
	LeagueHint      string
	// Regrade lets an operator re-grade a prop that is already terminal.
	Regrade bool
}

// Timing breaks down where a grading call spent its time.
type Timing struct {
	EvaluateMS int64 `json:"evaluateMs"`
	CascadeMS  int64 `json:"cascadeMs"`
	TotalMS    int64 `json:"totalMs"`
}

// Result is what a grading call decided and, unless dry-run, applied.
type Result struct {
	PropID            string        `json:"propId"`
	Formula           string        `json:"formula,omitempty"`
	League            string        `json:"league,omitempty"`
	Verdict           props.Verdict `json:"verdict"`
	PropStatus        props.Status  `json:"propStatus"`
	PredictionsGraded int           `json:"predictionsGraded"`
	PackGraded        bool          `json:"packGraded"`
	DryRun            bool          `json:"dryRun"`
	Timing            Timing        `json:"timing"`
}

// Config holds grading policy knobs.
type Config struct {
	PushPoints int64
	Timezone   string
}

// Service grades props and cascades verdicts onto predictions and packs.
type Service struct {
	store      store.Store
	engine     Engine
	source     formula.DataSource
	recorder   *metrics.Recorder
	logger     *slog.Logger
	pushPoints int64
	timezone   string
	now        func() time.Time
}

// NewService wires a grading service.
func NewService(st store.Store, engine Engine, source formula.DataSource, cfg Config, recorder *metrics.Recorder, logger *slog.Logger) *Service {
	return &Service{
		store:      st,
		engine:     engine,
		source:     source,
		recorder:   recorder,
		logger:     logger,
		pushPoints: cfg.PushPoints,
		timezone:   cfg.Timezone,
		now:        time.Now,
	}
}

// Grade evaluates the prop's formula and, unless DryRun, applies the verdict.
// Failures are returned untouched so callers see the typed kind.
func (s *Service) Grade(ctx context.Context, propID string, opts Options) (res Result, err error) {
	const op = "grading.Grade"
	start := s.now()
	res = Result{PropID: propID, DryRun: opts.DryRun}
	defer func() {
		res.Timing.TotalMS = s.now().Sub(start).Milliseconds()
		s.observe(ctx, "grade", res, err, s.now().Sub(start))
	}()

	prop, err := s.loadProp(ctx, op, propID)
	if err != nil {
		return res, err
	}
	event, err := s.loadEvent(ctx, op, prop)
	if err != nil {
		return res, err
	}

	res.Formula = firstNonEmpty(opts.FormulaOverride, prop.FormulaKey)
	res.League = strings.ToLower(firstNonEmpty(event.League, opts.LeagueHint))
	if err := checkEligible(op, prop, opts); err != nil {
		return res, err
	}
	if res.League == "" {
		return res, failure.Validation(op, "prop %s has no league; supply a league hint", prop.ID)
	}
	params, err := formula.MergeParams(prop.FormulaParams, opts.ParamOverrides)
	if err != nil {
		return res, err
	}

	evalStart := s.now()
	verdict, err := s.engine.Evaluate(ctx, res.Formula, formula.Request{
		League:   res.League,
		Event:    event,
		Params:   params,
		Source:   s.source,
		Timezone: s.timezone,
	})
	res.Timing.EvaluateMS = s.now().Sub(evalStart).Milliseconds()
	if err != nil {
		return res, err
	}
	if !verdict.Valid() {
		return res, fmt.Errorf("%s: formula %s returned unknown winner %q", op, res.Formula, verdict.Winner)
	}
	res.Verdict = verdict
	res.PropStatus = verdict.Status()
	if opts.DryRun {
		res.PropStatus = prop.Status
		return res, nil
	}

	cascadeStart := s.now()
	err = s.cascade(ctx, op, prop.ID, verdict, &res)
	res.Timing.CascadeMS = s.now().Sub(cascadeStart).Milliseconds()
	return res, err
}

// GradeManual applies an operator-chosen verdict through the same cascade.
// It ignores grading mode and may re-grade a terminal prop.
func (s *Service) GradeManual(ctx context.Context, propID string, verdict props.Verdict) (res Result, err error) {
	const op = "grading.GradeManual"
	start := s.now()
	res = Result{PropID: propID, Formula: "manual", Verdict: verdict}
	defer func() {
		res.Timing.TotalMS = s.now().Sub(start).Milliseconds()
		s.observe(ctx, "manual", res, err, s.now().Sub(start))
	}()

	if !verdict.Valid() {
		return res, failure.Validation(op, "winner must be A, B or push, got %q", verdict.Winner)
	}
	prop, err := s.loadProp(ctx, op, propID)
	if err != nil {
		return res, err
	}
	if strings.TrimSpace(verdict.ResultText) == "" {
		res.Verdict.ResultText = labelFor(prop, verdict.Winner)
	}
	res.PropStatus = verdict.Status()

	cascadeStart := s.now()
	err = s.cascade(ctx, op, prop.ID, res.Verdict, &res)
	res.Timing.CascadeMS = s.now().Sub(cascadeStart).Milliseconds()
	return res, err
}

// CheckPack re-runs the pack completion check on demand.
func (s *Service) CheckPack(ctx context.Context, packID string) (bool, error) {
	const op = "grading.CheckPack"
	var graded bool
	err := s.store.InTx(ctx, func(tx store.Tx) error {
		var err error
		graded, err = checkPack(ctx, tx, packID, s.logger)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return false, failure.NotFound(op, "pack "+packID)
	}
	if err != nil {
		return false, failure.Cascade(op, err)
	}
	return graded, nil
}

func (s *Service) loadProp(ctx context.Context, op, id string) (props.Prop, error) {
	if strings.TrimSpace(id) == "" {
		return props.Prop{}, failure.Validation(op, "prop id is required")
	}
	prop, err := s.store.GetProp(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return prop, failure.NotFound(op, "prop "+id)
	}
	if err != nil {
		return prop, fmt.Errorf("%s: load prop %s: %w", op, id, err)
	}
	return prop, nil
}

func (s *Service) loadEvent(ctx context.Context, op string, prop props.Prop) (props.Event, error) {
	if prop.EventID == "" {
		return props.Event{}, nil
	}
	event, err := s.store.GetEvent(ctx, prop.EventID)
	if errors.Is(err, store.ErrNotFound) {
		return event, failure.NotFound(op, "event "+prop.EventID)
	}
	if err != nil {
		return event, fmt.Errorf("%s: load event %s: %w", op, prop.EventID, err)
	}
	return event, nil
}

// checkEligible enforces the auto-mode gate. A non-auto prop may only be
// previewed, and only with an explicit formula.
func checkEligible(op string, prop props.Prop, opts Options) error {
	if prop.GradingMode != props.ModeAuto && !(opts.DryRun && opts.FormulaOverride != "") {
		return failure.Validation(op, "prop %s is %s-graded; auto grading needs dryRun with a formula override", prop.ID, prop.GradingMode)
	}
	if !opts.DryRun && prop.Status.Terminal() && !opts.Regrade {
		return failure.Validation(op, "prop %s is already %s; set regrade to grade it again", prop.ID, prop.Status)
	}
	if firstNonEmpty(opts.FormulaOverride, prop.FormulaKey) == "" {
		return failure.Validation(op, "prop %s has no formula", prop.ID)
	}
	return nil
}

func (s *Service) observe(ctx context.Context, action string, res Result, err error, elapsed time.Duration) {
	logger := logging.FromContext(ctx, s.logger)
	attrs := []any{
		logging.FieldPropID, res.PropID,
		logging.FieldFormula, res.Formula,
		logging.FieldLeague, res.League,
		logging.FieldDryRun, res.DryRun,
		logging.FieldDurationMS, elapsed.Milliseconds(),
	}

	outcome := string(res.Verdict.Status())
	if err != nil {
		kind := failure.KindOf(err)
		outcome = string(kind)
		if kind == "" {
			outcome = "error"
		}
		attrs = append(attrs, logging.FieldKind, outcome, "error", err)
		if kind == failure.KindDataNotReady || kind == failure.KindValidation || kind == failure.KindNotFound {
			logging.Info(logger, action+" not graded", attrs...)
		} else {
			logging.Warn(logger, action+" failed", attrs...)
		}
	} else {
		attrs = append(attrs, logging.FieldVerdict, outcome, "predictions", res.PredictionsGraded, "pack_graded", res.PackGraded)
		logging.Info(logger, action+" complete", attrs...)
	}
	s.recorder.RecordGrading(res.Formula, outcome, res.DryRun, elapsed)
}

func labelFor(prop props.Prop, w props.Winner) string {
	switch w {
	case props.WinnerA:
		return firstNonEmpty(prop.SideALabel, "A")
	case props.WinnerB:
		return firstNonEmpty(prop.SideBLabel, "B")
	}
	return "Push"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
