package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/prop-grader/internal/app/grading"
	apph2h "github.com/preston-bernstein/prop-grader/internal/app/h2h"
	"github.com/preston-bernstein/prop-grader/internal/app/predictions"
	"github.com/preston-bernstein/prop-grader/internal/app/sweep"
	"github.com/preston-bernstein/prop-grader/internal/cache"
	"github.com/preston-bernstein/prop-grader/internal/config"
	"github.com/preston-bernstein/prop-grader/internal/formula"
	httpserver "github.com/preston-bernstein/prop-grader/internal/http"
	"github.com/preston-bernstein/prop-grader/internal/http/handlers"
	"github.com/preston-bernstein/prop-grader/internal/logging"
	"github.com/preston-bernstein/prop-grader/internal/metrics"
	"github.com/preston-bernstein/prop-grader/internal/providers"
	"github.com/preston-bernstein/prop-grader/internal/store"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         store.Store
	cache         *cache.RedisCache
	httpServer    httpServer
	metricsServer httpServer
	sweeper       Sweeper
	metricsStop   func(context.Context) error
}

// New wires the store, upstream providers, grading services, sweep and HTTP
// router from cfg. It fails only when the store cannot be opened.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(ctx, cfg, logger, nil)
}

func newServerWithMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	rc := openPayloadCache(ctx, cfg, logger)
	var payloads providers.PayloadCache
	if rc != nil {
		payloads = rc
	}
	source := newSourceFactory(cfg, payloads, logger, recorder).build()

	grader := grading.NewService(st, formula.NewRegistry(), source, grading.Config{
		PushPoints: cfg.PushPoints,
		Timezone:   cfg.Timezone,
	}, recorder, logger)

	var sw Sweeper
	if cfg.Sweep.Enabled {
		sw = sweep.New(st, grader, logger, recorder, cfg.Sweep.Interval)
	}

	handler := handlers.NewHandler(
		grader,
		apph2h.NewService(st, logger),
		predictions.NewService(st, logger),
		readyCheck(st, sw),
		logger,
	)
	router := httpserver.NewRouter(handler, httpserver.RouterConfig{
		AdminToken:     cfg.AdminToken,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
		Recorder:       recorder,
	})
	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN is empty, admin routes are disabled")
	}

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         st,
		cache:         rc,
		httpServer:    buildHTTPServer(cfg, router),
		metricsServer: metricsSrv,
		sweeper:       sw,
		metricsStop:   metricsShutdown,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, st store.Store, httpSrv httpServer, sw Sweeper) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		store:      st,
		httpServer: httpSrv,
		sweeper:    sw,
	}
}

func buildHTTPServer(cfg config.Config, router http.Handler) httpServer {
	return netHTTPServer{srv: &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}}
}

// Run starts the sweep and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	if s.sweeper != nil {
		s.sweeper.Start(ctx)
	}

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	if s.logger != nil {
		s.logger.Info("http server starting", slog.String("addr", s.httpServer.Addr()))
	}
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	if s.logger != nil {
		s.logger.Info("metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

// gracefulShutdown stops intake first (sweep, then HTTP) so no grading is in
// flight when the store and cache close.
func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if s.sweeper != nil {
		if err := s.sweeper.Stop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Error("failed to stop sweep", "error", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil && s.logger != nil {
			s.logger.Warn("payload cache close failed", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && s.logger != nil {
			s.logger.Warn("store close failed", "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
