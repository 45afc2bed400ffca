package server

import (
	"context"
	"net/http"

	"github.com/preston-bernstein/prop-grader/internal/app/sweep"
)

type stubSweeper struct {
	StartCalls int
	StopCalls  int
	Err        error
	StatusVal  sweep.Status
}

func (s *stubSweeper) Start(context.Context) { s.StartCalls++ }

func (s *stubSweeper) Stop(context.Context) error {
	s.StopCalls++
	return s.Err
}

func (s *stubSweeper) Status() sweep.Status { return s.StatusVal }

// stubHTTPServer stands in for netHTTPServer. With blockShutdown set,
// Shutdown waits for its context to expire.
type stubHTTPServer struct {
	listenErr     error
	shutdownErr   error
	blockShutdown bool
	shutdownCalls int
}

func (s *stubHTTPServer) ListenAndServe() error { return s.listenErr }

func (s *stubHTTPServer) Shutdown(ctx context.Context) error {
	s.shutdownCalls++
	if s.blockShutdown {
		<-ctx.Done()
		return ctx.Err()
	}
	return s.shutdownErr
}

func (s *stubHTTPServer) Addr() string          { return ":0" }
func (s *stubHTTPServer) Handler() http.Handler { return http.NotFoundHandler() }
