package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/preston-bernstein/prop-grader/internal/app/sweep"
	"github.com/preston-bernstein/prop-grader/internal/http/handlers"
	"github.com/preston-bernstein/prop-grader/internal/store"
)

// Sweeper defines the minimal sweep behavior needed by the server.
type Sweeper interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() sweep.Status
}

var errStoreUnavailable = errors.New("store unavailable")

// readyCheck fails when the store does not answer or when the sweep keeps
// failing. A sweep that has not finished a pass yet does not block readiness.
func readyCheck(st store.Store, sw Sweeper) handlers.ReadyCheck {
	return func(ctx context.Context) error {
		if st == nil {
			return errStoreUnavailable
		}
		if err := st.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %v", errStoreUnavailable, err)
		}
		if sw == nil {
			return nil
		}
		status := sw.Status()
		if status.ConsecutiveFailures > 0 && !status.IsReady() {
			return fmt.Errorf("sweep failing: %s", status.LastError)
		}
		return nil
	}
}
