package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/podclips/internal/adapters/http/api"
	"github.com/okian/podclips/internal/adapters/http/site"
	"github.com/okian/podclips/internal/adapters/http/swagger"
	repository "github.com/okian/podclips/internal/adapters/repository"
	app "github.com/okian/podclips/internal/app"
	"github.com/okian/podclips/internal/config"
	"github.com/okian/podclips/internal/domain/model"
	"github.com/okian/podclips/internal/seed"
	"github.com/okian/podclips/pkg/logger"
	"github.com/okian/podclips/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

// run wires the store, the service and the HTTP server, and blocks until ctx
// is cancelled or the listener fails.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "closing clip store failed", logger.Error(err))
		}
	}()

	clips, err := loadSeed(cfg)
	if err != nil {
		return err
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithSeed(clips),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.VoteQueueSize),
		app.WithActiveWindow(cfg.ActiveWindow),
		app.WithRejectUnknownVoteType(cfg.RejectUnknownVoteType),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// openStore returns the clip store selected by cfg.StoreDriver.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return repository.NewMemoryStore(ctx), nil
	case config.StoreSQLite:
		return repository.OpenSQLStore(ctx, repository.DriverSQLite, cfg.DatabaseURL)
	case config.StorePostgres:
		return repository.OpenSQLStore(ctx, repository.DriverPostgres, cfg.DatabaseURL,
			repository.WithMaxOpenConns(cfg.DBMaxOpenConns))
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrUnsupportedDriver, cfg.StoreDriver)
	}
}

// loadSeed returns the clips an empty store starts with.
func loadSeed(cfg *config.Config) ([]model.Clip, error) {
	switch {
	case cfg.SeedFile != "":
		return seed.LoadFile(cfg.SeedFile)
	case cfg.SeedSample:
		return seed.Sample()
	default:
		return nil, nil
	}
}

// newHandler registers every route on a fresh mux and wraps it in CORS.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc,
		api.WithListLimits(cfg.DefaultListLimit, cfg.MaxListLimit),
		api.WithLogger(logger.Named("api")),
	)
	apiServer.Register(ctx, mux)

	// Catch-all; registered last.
	site.Register(ctx, mux)

	return api.CORS(cfg.AllowedOrigins(), mux)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(ctx context.Context, svc *app.Service) {
	// GetStats refreshes the clip total itself.
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if st, err := svc.ComputeStats(ctx); err == nil {
		metrics.UpdateFeaturedTotal(st.FeaturedCount)
	}
}
