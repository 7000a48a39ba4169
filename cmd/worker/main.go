package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	gobreaker "github.com/sony/gobreaker/v2"

	"seotrack/internal/clustering"
	"seotrack/internal/config"
	"seotrack/internal/db"
	"seotrack/internal/forecast"
	"seotrack/internal/jobs"
	"seotrack/internal/metrics"
	"seotrack/internal/platform"
	"seotrack/internal/queue"
	"seotrack/internal/scoring"
	"seotrack/internal/server"
	"seotrack/internal/supervisor"
	"seotrack/internal/validation"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}

	if valid, msg := validation.ValidateURL(cfg.CollectorURL); !valid {
		log.Fatalf("Invalid COLLECTOR_URL: %s", msg)
	}

	database, err := db.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	backend, err := queue.Open(cfg.RedisURL, cfg.ResultTTL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer backend.Close()

	metrics.Init(nil, nil)

	// Platform adapters: one collector client, paced and isolated per platform.
	limits, defaultLimits := yamlCfg.Limits()
	breakerCfg := platform.DefaultBreakerConfig()
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		metrics.SetBreakerState(name, float64(to))
	}
	adapter := platform.NewBreakerAdapter(
		platform.NewHTTPAdapter(cfg.CollectorURL, cfg.CollectorTimeout),
		breakerCfg,
		limits,
		defaultLimits,
	)
	registry := platform.NewRegistry(adapter, yamlCfg.PlatformNames()...)
	log.Printf("Collecting platforms: %v", registry.Platforms())

	dispatcher := &jobs.Dispatcher{
		Collection: jobs.NewCollectionJob(database, registry, scoring.NewScorer(yamlCfg.Weights()), jobs.CollectionConfig{
			Concurrency:   cfg.CollectConcurrency,
			CommitTimeout: cfg.CommitTimeout,
		}),
		Analysis: jobs.NewAnalysisJob(database, clustering.New(clustering.Config{Seed: cfg.ClusterSeed})),
		Forecast: jobs.NewForecastJob(database, forecast.New()),
	}

	tree := supervisor.New("seotrack-worker", logger, supervisor.DefaultTreeConfig())

	concurrency := cfg.WorkerConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	for i := 0; i < concurrency; i++ {
		tree.AddWorker(jobs.NewWorker(backend.Queue, backend.Results, dispatcher, jobs.WorkerConfig{
			Consumer:    fmt.Sprintf("%s-%d", cfg.WorkerID, i),
			JobTimeout:  cfg.JobTimeout,
			PollTimeout: cfg.PollTimeout,
		}))
	}

	probes := server.New(&config.Config{Env: cfg.Env, ServerAddr: cfg.MetricsAddr}, nil)
	probes.RegisterProbes(database, backend)
	tree.AddService(supervisor.NewHTTPService(probes))

	log.Printf("Worker %s started with %d workers", cfg.WorkerID, concurrency)
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Supervisor exited: %v", err)
	}
	logUnstoppedServices(tree)
	log.Println("Worker exited")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func logUnstoppedServices(tree *supervisor.Tree) {
	unstopped, err := tree.UnstoppedServiceReport()
	if err != nil {
		slog.Warn("failed to get unstopped service report", "error", err)
		return
	}
	for _, svc := range unstopped {
		slog.Warn("service did not stop before shutdown timeout", "service", svc.Name)
	}
}
