package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/tabterm/internal/api/http"
	"github.com/GriffinCanCode/tabterm/internal/api/middleware"
	"github.com/GriffinCanCode/tabterm/internal/api/ws"
	"github.com/GriffinCanCode/tabterm/internal/domain/state"
	"github.com/GriffinCanCode/tabterm/internal/domain/tabs"
	"github.com/GriffinCanCode/tabterm/internal/domain/terminal"
	"github.com/GriffinCanCode/tabterm/internal/domain/workspace"
	"github.com/GriffinCanCode/tabterm/internal/infrastructure/config"
	"github.com/GriffinCanCode/tabterm/internal/infrastructure/logging"
	"github.com/GriffinCanCode/tabterm/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/tabterm/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/tabterm/internal/infrastructure/tracing"
)

const (
	spawnBreakerName = "spawn"
	streamPath       = "/stream"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	config     *config.Config
	logger     *logging.Logger
	metrics    *monitoring.Metrics
	tracer     *tracing.Tracer
	dispatcher *terminal.Dispatcher
	hub        *ws.Hub
	workspace  *workspace.Workspace
	handler    http.Handler
	http       *http.Server
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.Info("Initializing tabterm server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("state_path", cfg.Storage.Path()),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New(logger.Component(logging.HTTP))

	store, err := state.Open(cfg.Storage.Path(), logger.Component(logging.Store))
	if err != nil {
		tracer.Close()
		return nil, fmt.Errorf("failed to open state: %w", err)
	}

	termLog := logger.Component(logging.Terminal)
	breaker := resilience.New(spawnBreakerName, resilience.Settings{
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			metrics.SetBreakerState(name, int(to))
			termLog.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	metrics.SetBreakerState(spawnBreakerName, int(breaker.State()))

	tracker := tabs.NewTracker()
	hub := ws.NewHub(ws.DefaultBuffer, metrics, logger.Component(logging.WS))
	dispatcher := terminal.NewDispatcher(
		terminal.Fanout(workspace.TrackerSink(tracker), hub),
		terminal.Options{
			Spawner: terminal.SpawnerConfig{
				Shell: terminal.ShellConfig{
					Shell:    cfg.Terminal.Shell,
					Args:     cfg.Terminal.ShellArgs(),
					TermType: cfg.Terminal.TermType,
				},
				Size:      terminal.Size{Rows: cfg.Terminal.Rows, Cols: cfg.Terminal.Cols},
				ReadChunk: cfg.Terminal.ReadChunk,
				KillGrace: cfg.Terminal.KillGrace,
			},
			Recorder: metrics,
			Logger:   termLog,
			Breaker:  breaker,
		},
	)
	wsp := workspace.New(dispatcher, tracker, store, logger.Component(logging.Terminal))

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	apihttp.NewHandlers(wsp, metrics, breaker).Register(router)
	router.GET(streamPath, ws.NewHandler(hub, wsp, logger.Component(logging.WS)).HandleConnection)

	handler := compressed(router)
	logger.Info("Server initialized successfully")

	return &Server{
		config:     cfg,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		dispatcher: dispatcher,
		hub:        hub,
		workspace:  wsp,
		handler:    handler,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// compressed gzips API responses. The stream bypasses it because the
// upgrade must hijack the raw connection.
func compressed(router http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(router)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == streamPath {
			router.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, disconnects stream clients, closes
// every tab and flushes logs. ctx bounds the whole sequence.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}
	s.hub.Close()
	if err := s.dispatcher.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("terminals: %w", err))
	}
	s.tracer.Close()

	if err := errors.Join(errs...); err != nil {
		s.logger.Error("Shutdown incomplete", zap.Error(err))
		_ = s.logger.Sync()
		return err
	}

	s.logger.Info("Server stopped")
	_ = s.logger.Sync()
	return nil
}
