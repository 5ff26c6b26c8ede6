// Command engaged runs the engagement scoring engine as a daemon: it executes
// batch passes on a configured cadence and exposes metrics over HTTP.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/gympulse/engage/internal/adapters/store"
	"github.com/gympulse/engage/internal/app"
	"github.com/gympulse/engage/internal/config"
	"github.com/gympulse/engage/internal/demoseed"
	"github.com/gympulse/engage/pkg/logger"
	"github.com/gympulse/engage/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	recordStore, cleanup, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build record store", logger.Error(err))
		return
	}
	defer cleanup()

	engine, err := app.New(recordStore,
		app.WithLogger(log.Named("engine")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithClientTimeout(time.Duration(cfg.ClientTimeoutMS)*time.Millisecond),
		app.WithLookbackDays(cfg.LookbackDays),
		app.WithTopN(cfg.TopN),
	)
	if err != nil {
		log.Error(ctx, "failed to build engine", logger.Error(err))
		return
	}

	// Metrics and health endpoints.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting metrics server", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("metrics server failed: " + err.Error() + "\n")
		}
	}()

	runPass := func() {
		if _, err := engine.RunBatch(ctx); err != nil {
			log.Error(ctx, "batch pass failed", logger.Error(err))
		}
	}

	// The engine core has no scheduler of its own; cadence belongs here.
	// A cron expression wins over the plain interval when both are set.
	var scheduler *cron.Cron
	switch {
	case cfg.BatchCron != "":
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.BatchCron, runPass); err != nil {
			log.Error(ctx, "invalid batch_cron expression", logger.String("batch_cron", cfg.BatchCron), logger.Error(err))
			return
		}
		scheduler.Start()
		log.Info(ctx, "scheduling batch passes by cron", logger.String("batch_cron", cfg.BatchCron))
	case cfg.BatchIntervalSeconds > 0:
		interval := time.Duration(cfg.BatchIntervalSeconds) * time.Second
		log.Info(ctx, "scheduling batch passes by interval", logger.Duration("interval", interval))
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					runPass()
				}
			}
		}()
	default:
		log.Info(ctx, "no batch cadence configured; passes must be triggered externally")
	}

	// One immediate pass so the cache is warm before the first tick.
	runPass()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down")

	if scheduler != nil {
		scheduler.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// buildStore constructs the record store selected by the config. The memory
// driver gets a seeded synthetic fleet so the daemon is useful out of the box.
func buildStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.RecordStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "using postgres record store")
		return pg, func() { _ = pg.Close() }, nil
	default:
		mem := store.NewMemoryStore()
		demoseed.New().Seed(mem, time.Now())
		log.Info(ctx, "using seeded in-memory record store")
		return mem, func() {}, nil
	}
}
