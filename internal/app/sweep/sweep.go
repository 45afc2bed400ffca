package sweep

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/prop-grader/internal/app/grading"
	"github.com/preston-bernstein/prop-grader/internal/domain/props"
	"github.com/preston-bernstein/prop-grader/internal/failure"
	"github.com/preston-bernstein/prop-grader/internal/logging"
	"github.com/preston-bernstein/prop-grader/internal/metrics"
)

const defaultInterval = 5 * time.Minute

// Lister finds props that are due for auto grading.
type Lister interface {
	ListAutoGradable(ctx context.Context, startedBefore time.Time) ([]props.Prop, error)
}

// Grader grades a single prop.
type Grader interface {
	Grade(ctx context.Context, propID string, opts grading.Options) (grading.Result, error)
}

// Sweeper grades every due auto-mode prop on an interval.
type Sweeper struct {
	lister   Lister
	grader   Grader
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the sweep loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
	LastCycle           Cycle
}

// IsReady reports whether the sweep has had a recent success and is not
// failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// Cycle counts what one pass did.
type Cycle struct {
	Due      int
	Graded   int
	NotReady int
	Failed   int
}

// New constructs a Sweeper.
func New(lister Lister, grader Grader, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Sweeper{
		lister:   lister,
		grader:   grader,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start runs a pass immediately and then on every tick until ctx is
// cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	s.startMu.Lock()
	if s.started {
		s.startMu.Unlock()
		return
	}
	s.started = true
	s.startMu.Unlock()

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		logging.Info(s.logger, "sweep started", slog.Int64(logging.FieldDurationMS, s.interval.Milliseconds()))
		s.RunOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				logging.Info(s.logger, "sweep stopped")
				return
			case <-s.done:
				logging.Info(s.logger, "sweep stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// Stop halts the loop. It is safe to call before, during or after Start.
func (s *Sweeper) Stop(context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })
	return nil
}

// RunOnce grades every due prop. Per-prop failures are logged and counted;
// only a failed listing fails the cycle. Data that is not ready yet is
// picked up again on the next pass.
func (s *Sweeper) RunOnce(ctx context.Context) Cycle {
	start := s.now()
	s.recordAttempt(start)

	due, err := s.lister.ListAutoGradable(ctx, start)
	if err != nil {
		s.metrics.RecordSweepCycle(time.Since(start), err)
		logging.Error(s.logger, "sweep listing failed", err)
		s.recordFailure(err, start)
		return Cycle{}
	}

	cycle := Cycle{Due: len(due)}
	for _, p := range due {
		if ctx.Err() != nil {
			break
		}
		_, err := s.grader.Grade(ctx, p.ID, grading.Options{})
		switch {
		case err == nil:
			cycle.Graded++
		case failure.Is(err, failure.KindDataNotReady):
			cycle.NotReady++
		default:
			cycle.Failed++
		}
	}

	s.metrics.RecordSweepCycle(time.Since(start), nil)
	s.recordSuccess(start, cycle)
	logging.Info(s.logger, "sweep complete",
		logging.FieldCount, cycle.Due,
		"graded", cycle.Graded,
		"not_ready", cycle.NotReady,
		"failed", cycle.Failed,
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return cycle
}

func (s *Sweeper) recordAttempt(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.LastAttempt = at
}

func (s *Sweeper) recordSuccess(at time.Time, cycle Cycle) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures = 0
	s.status.LastError = ""
	s.status.LastSuccess = at
	s.status.LastCycle = cycle
}

func (s *Sweeper) recordFailure(err error, at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures++
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.status.LastAttempt = at
}

// Status returns a snapshot of the sweep's recent health.
func (s *Sweeper) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}
