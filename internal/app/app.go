package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"shiftcal/internal/calendarsync"
	"shiftcal/internal/config"
	"shiftcal/internal/errors"
	"shiftcal/internal/fetch"
	"shiftcal/internal/infrastructure"
	customMiddleware "shiftcal/internal/middleware"
	"shiftcal/internal/services"
	"shiftcal/internal/shiftscan"
	handlers "shiftcal/internal/transport/http"
	"shiftcal/internal/workbook"
	"shiftcal/pkg/contracts"
)

// AppName is logged at startup
const AppName = "shiftcal"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	ShiftService  *services.ShiftService
	HealthService *services.HealthService
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.ScanMetrics
	ErrorHandler  *errors.ErrorHandler
}

// NewApplication loads the configuration and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateScanMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  errors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	engine, err := shiftscan.NewEngine(a.Config.EngineParams())
	if err != nil {
		return fmt.Errorf("failed to create scan engine: %w", err)
	}

	loc, err := a.Config.Location()
	if err != nil {
		return err
	}

	downloader := fetch.NewClient(fetch.Config{
		Timeout:  a.Config.Fetch.Timeout,
		MaxBytes: a.Config.Fetch.MaxBytes,
	}, nil)

	wbOpts := workbook.DefaultOptions()
	wbOpts.IncludeHidden = a.Config.Scan.IncludeHidden

	calendarID := a.Config.Calendar.GoogleCalendarID
	stores := func(ctx context.Context, token string) (calendarsync.EventStore, error) {
		return calendarsync.NewGoogleStore(ctx, token, calendarID, loc)
	}

	shiftService, err := services.NewShiftService(services.ShiftServiceConfig{
		Engine:      engine,
		Downloader:  downloader,
		Workbook:    wbOpts,
		Location:    loc,
		ProductID:   a.Config.Calendar.ProductID,
		Stores:      stores,
		SyncTimeout: a.Config.Calendar.SyncTimeout,
		Metrics:     a.Metrics,
		Tracer:      a.OTelProviders.Tracer,
		Logger:      a.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shift service: %w", err)
	}
	a.ShiftService = shiftService
	a.HealthService = services.NewHealthService(shiftService, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID → OTel → Logger → Recoverer → headers → CORS → rate limit → Timeout
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(errors.RecoveryMiddleware(a.ErrorHandler))
	r.Use(customMiddleware.DefaultSecureHeaders().Handler)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	// Scrapes skip the request timeout
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validation := customMiddleware.NewValidationMiddleware(a.Logger, a.ErrorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(middleware.Timeout(a.Config.Server.RequestTimeout))

		handlers.NewHealthHandler(a.HealthService, a.Logger).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(validation.ValidateRequest)
			r.Mount("/", handlers.NewProcessHandler(a.ShiftService, validation, a.ErrorHandler, a.Logger).Routes())
		})
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	config := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Request-ID",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	a.Logger.Info("CORS configured",
		slog.Any("allowed_origins", config.AllowedOrigins))
	return config
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start binds the listener and serves in the background. A serve failure
// calls cancel so Run can shut down.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln, cancel)
}

// Serve serves on ln in the background
func (a *Application) Serve(ctx context.Context, ln net.Listener, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.Serve(ln); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", ln.Addr().String()))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
