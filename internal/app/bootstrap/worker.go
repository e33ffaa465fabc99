package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/specvital/planner/internal/app"
	"github.com/specvital/planner/internal/infra/config"
	"github.com/specvital/planner/internal/infra/db"
	infraqueue "github.com/specvital/planner/internal/infra/queue"
)

// WorkerConfig holds configuration for the plan assembly worker.
type WorkerConfig struct {
	AI              config.AIConfig
	Concurrency     int
	DatabaseURL     string
	Section         config.SectionConfig
	ServiceName     string
	ShutdownTimeout time.Duration
}

func (c *WorkerConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}
	if !c.AI.HasCredentials() {
		return fmt.Errorf("AI provider key is required (set MOCK_MODE=true to skip)")
	}
	return nil
}

func (c *WorkerConfig) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = infraqueue.DefaultShutdownTimeout
	}
}

// StartWorker consumes plan:assemble jobs. The River schema must already
// exist. Horizontal scaling is safe - instances share the queue.
func StartWorker(cfg WorkerConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()

	slog.Info("starting service", "name", cfg.ServiceName)
	slog.Info("config loaded",
		"database_url", maskURL(cfg.DatabaseURL),
		"ai_provider", cfg.AI.Provider,
		"mock_mode", cfg.AI.MockMode,
	)

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolConfigForWorkers(cfg.Concurrency))
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer pool.Close()

	slog.Info("postgres connected")

	container, err := app.NewWorkerContainer(ctx, app.ContainerConfig{
		AI:      cfg.AI,
		Pool:    pool,
		Section: cfg.Section,
	})
	if err != nil {
		return fmt.Errorf("container: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			slog.Error("failed to close container", "error", err)
		}
	}()

	queues := planQueues(cfg.Concurrency)
	srv, err := infraqueue.NewServer(ctx, infraqueue.ServerConfig{
		Pool:            pool,
		Queues:          queues,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Workers:         container.Workers,
	})
	if err != nil {
		return fmt.Errorf("queue server: %w", err)
	}

	logQueueSubscription("plan-worker", queues)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	slog.Info("plan-worker ready")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	sig := <-shutdown
	slog.Info("shutdown signal received", "signal", sig.String())

	if err := srv.Stop(ctx); err != nil {
		slog.Error("queue server stop error", "error", err)
	}
	slog.Info("queue server stopped")

	slog.Info("service shutdown complete", "name", cfg.ServiceName)
	return nil
}
