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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/rinkrank/internal/adapters/http/api"
	"github.com/okian/rinkrank/internal/adapters/http/site"
	"github.com/okian/rinkrank/internal/adapters/http/swagger"
	"github.com/okian/rinkrank/internal/adapters/mcp"
	"github.com/okian/rinkrank/internal/adapters/repository"
	app "github.com/okian/rinkrank/internal/app"
	"github.com/okian/rinkrank/internal/config"
	"github.com/okian/rinkrank/pkg/logger"
	"github.com/okian/rinkrank/pkg/metrics"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev" //nolint:gochecknoglobals // build stamp

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "rinkrank stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// run serves the configured dataset until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	svc := newService(cfg, store)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go reloadOnHangup(ctx, svc)

	handler, err := newHandler(ctx, cfg, svc)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// openStore picks the dataset reader named by the config.
func openStore(cfg *config.Config) (repository.Store, error) {
	opts := []repository.Option{repository.WithLogger(logger.Named("repository"))}
	switch cfg.DataSource {
	case config.SourceSQLite:
		store, err := repository.NewSQLStore(cfg.SQLiteDSN, opts...)
		if err != nil {
			return nil, fmt.Errorf("open sqlite dataset: %w", err)
		}
		return store, nil
	default:
		return repository.NewJSONStore(cfg.DataDir, opts...), nil
	}
}

func newService(cfg *config.Config, store repository.Store) *app.Service {
	return app.New(
		app.WithLogger(logger.Named("service")),
		app.WithStore(store),
		app.WithConfig(cfg),
	)
}

// newHandler registers every route on a fresh mux.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) (http.Handler, error) {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)

	if cfg.MCPEnabled {
		tools, err := mcp.New(svc, mcp.WithLogger(logger.Named("mcp")), mcp.WithVersion(version))
		if err != nil {
			return nil, fmt.Errorf("mcp server: %w", err)
		}
		mux.Handle(cfg.MCPPath, api.MetricsMiddleware(tools.Handler().ServeHTTP, "mcp"))
	}

	return api.RequestIDMiddleware(mux), nil
}

// reloadOnHangup re-reads the dataset on SIGHUP.
func reloadOnHangup(ctx context.Context, svc *app.Service) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	log := logger.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := svc.Reload(ctx); err != nil {
				log.Error(ctx, "dataset reload failed; keeping previous data", logger.Error(err))
				continue
			}
			log.Info(ctx, "dataset reloaded")
		}
	}
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
