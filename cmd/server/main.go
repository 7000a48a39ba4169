package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"seotrack/internal/config"
	"seotrack/internal/db"
	"seotrack/internal/handlers/api"
	"seotrack/internal/jobs"
	"seotrack/internal/metrics"
	"seotrack/internal/queue"
	"seotrack/internal/server"
	"seotrack/internal/supervisor"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	if cfg.IsDev() {
		if err := database.SeedDevKeywords(ctx); err != nil {
			slog.Warn("failed to seed development keywords", "error", err)
		}
	}

	// Job queue and result backend
	backend, err := queue.Open(cfg.RedisURL, cfg.ResultTTL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer backend.Close()

	metrics.Init(database, backend.Queue)

	enqueuer := jobs.NewEnqueuer(backend.Queue, backend.Results)

	srv := server.New(cfg, backend.Storage)
	srv.RegisterRoutes(server.Deps{
		DB:    database,
		Queue: backend,
		Jobs:  api.NewJobHandler(enqueuer, backend.Results),
	})

	tree := supervisor.New("seotrack-server", logger, supervisor.DefaultTreeConfig())
	tree.AddService(supervisor.NewHTTPService(srv))

	if cfg.CollectInterval > 0 {
		tree.AddService(jobs.NewScheduler(database, enqueuer, cfg.CollectInterval, cfg.CollectMaxAge))
	} else {
		log.Println("Collection scheduler disabled (COLLECT_INTERVAL=0)")
	}

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Supervisor exited: %v", err)
	}
	logUnstoppedServices(tree)
	log.Println("Server exited")
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
