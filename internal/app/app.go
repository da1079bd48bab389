// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bissquit/whiskerboard/api/openapi"
	"github.com/bissquit/whiskerboard/internal/catalog"
	"github.com/bissquit/whiskerboard/internal/config"
	"github.com/bissquit/whiskerboard/internal/dashboard"
	"github.com/bissquit/whiskerboard/internal/incidents"
	"github.com/bissquit/whiskerboard/internal/pkg/ctxlog"
	"github.com/bissquit/whiskerboard/internal/pkg/httputil"
	"github.com/bissquit/whiskerboard/internal/statuses"
	"github.com/bissquit/whiskerboard/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	store         *storage
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)
	slog.SetDefault(logger)

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		store:         store,
		metricsCancel: metricsCancel,
	}

	go app.collectDBMetrics(metricsCtx)

	router, err := app.setupRouter()
	if err != nil {
		metricsCancel()
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.close(closeCtx)
		return nil, fmt.Errorf("setup router: %w", err)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
		"backend", a.config.Storage.Backend,
	)

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	servers := map[string]*http.Server{
		"server":         a.server,
		"metrics server": a.metricsServer,
	}
	shutdownErrs := make(chan error, len(servers))
	var wg sync.WaitGroup
	for name, srv := range servers {
		wg.Go(func() {
			if err := srv.Shutdown(ctx); err != nil {
				shutdownErrs <- fmt.Errorf("shutdown %s: %w", name, err)
			}
		})
	}
	wg.Wait()
	close(shutdownErrs)

	var errs []error
	for err := range shutdownErrs {
		errs = append(errs, err)
	}

	if err := a.store.close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}

	return errors.Join(errs...)
}

func (a *App) collectDBMetrics(ctx context.Context) {
	a.store.recordMetrics()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.store.recordMetrics()
		case <-ctx.Done():
			return
		}
	}
}

func openAPIHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapi.Document)
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

func (a *App) setupRouter() (*chi.Mux, error) {
	r := chi.NewRouter()

	r.NotFound(httputil.NotFound)
	r.MethodNotAllowed(httputil.MethodNotAllowed)

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Timeout(a.config.API.RequestTimeout))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	r.Get("/api/openapi.yaml", openAPIHandler)

	incidentsService := incidents.NewService(a.store.incidents, a.store.catalog, incidents.Config{
		ValidateServiceRefs: a.config.Incidents.ValidateServiceRefs,
	})
	catalogService := catalog.NewService(a.store.catalog, incidentsService)

	renderer, err := dashboard.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("create dashboard renderer: %w", err)
	}
	board := dashboard.NewBoard(catalogService, incidentsService, a.config.Dashboard.PastDays)

	catalogHandler := catalog.NewHandler(catalogService)
	incidentsHandler := incidents.NewHandler(incidentsService)
	statusesHandler := statuses.NewHandler()
	dashboardHandler := dashboard.NewHandler(board, renderer)

	r.Route("/api/v{version:[0-9]+}", func(r chi.Router) {
		r.Use(httputil.RateLimitMiddleware(rate.Limit(a.config.API.RateLimit), a.config.API.RateBurst))

		catalogHandler.RegisterRoutes(r)
		incidentsHandler.RegisterRoutes(r)
		statusesHandler.RegisterRoutes(r)
	})

	dashboardHandler.RegisterRoutes(r)

	return r, nil
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.store.ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
