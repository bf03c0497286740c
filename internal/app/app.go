// Package app assembles the application: configuration, logging,
// metrics, services, the HTTP router, and server lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matias199305/sick-sensors-visualization/internal/config"
	apierrors "github.com/matias199305/sick-sensors-visualization/internal/errors"
	"github.com/matias199305/sick-sensors-visualization/internal/infrastructure"
	"github.com/matias199305/sick-sensors-visualization/internal/middleware"
	"github.com/matias199305/sick-sensors-visualization/internal/services"
	handlers "github.com/matias199305/sick-sensors-visualization/internal/transport/http"
	ws "github.com/matias199305/sick-sensors-visualization/internal/websocket"
)

// Version is the application version, overridable at build time.
var Version = "dev"

// Application is the main application container.
type Application struct {
	Config      *config.Config
	Logger      *slog.Logger
	Router      *chi.Mux
	Server      *http.Server
	Hub         *ws.Hub
	ScanService *services.ScanService
	Metrics     *infrastructure.Metrics

	closeLogger func() error
}

// NewApplication creates a new application instance. configFile may be
// empty to run from environment and defaults alone.
func NewApplication(configFile string) (*Application, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLogger, err := infrastructure.InitializeLogger(
		cfg.Logging.Level, cfg.Logging.Output, cfg.Logging.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	app := &Application{
		Config:      cfg,
		Logger:      logger,
		Metrics:     infrastructure.NewMetrics(),
		closeLogger: closeLogger,
	}

	app.Hub = ws.NewHub(logger)
	app.ScanService = services.NewScanService(cfg.Uploads, logger, app.Metrics, app.Hub)

	app.setupRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

// setupRouter wires the middleware chain and mounts all handlers.
func (a *Application) setupRouter() {
	errorHandler := apierrors.NewErrorHandler(a.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(a.Logger, a.Metrics))
	r.Use(middleware.Recoverer(a.Logger, errorHandler))
	if a.Config.Server.RateLimit.Enabled {
		r.Use(middleware.RateLimit(a.Config.Server.RateLimit.RPS, a.Config.Server.RateLimit.Burst, errorHandler))
	}

	scanHandler := handlers.NewScanHandler(
		a.ScanService, a.Logger, errorHandler,
		a.Config.Uploads.MaxFileSize, a.Config.Uploads.MaxFiles)
	healthHandler := handlers.NewHealthHandler(a.Logger, Version)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/scans", scanHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
	})
	r.Get("/ws", a.Hub.ServeWS)
	r.Handle("/metrics", a.Metrics.Handler())

	a.Router = r
}

// Run starts the WebSocket hub and the HTTP server, blocking until ctx
// is cancelled, then shuts everything down gracefully.
func (a *Application) Run(ctx context.Context) error {
	a.Hub.Start()
	defer a.Hub.Stop()
	defer a.closeLogger()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		a.Logger.Info("shutting down",
			slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.Logger.Info("application stopped")
	return err
}
