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
)

const schedulerShutdownTimeout = 30 * time.Second

type SchedulerConfig struct {
	DatabaseURL     string
	Recovery        config.RecoveryConfig
	ServiceName     string
	ShutdownTimeout time.Duration
}

func (c *SchedulerConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.Recovery.Schedule == "" {
		return fmt.Errorf("recovery schedule is required")
	}
	return nil
}

func (c *SchedulerConfig) applyDefaults() {
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = schedulerShutdownTimeout
	}
}

// StartScheduler runs the stale plan recovery job on a cron schedule.
//
// An advisory lock keeps the job single-run when several scheduler
// instances are deployed (e.g., during blue-green deployment).
func StartScheduler(cfg SchedulerConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()

	slog.Info("starting service", "name", cfg.ServiceName)
	slog.Info("config loaded",
		"database_url", maskURL(cfg.DatabaseURL),
		"schedule", cfg.Recovery.Schedule,
		"stale_after", cfg.Recovery.StaleAfter.String(),
		"abandon_after", cfg.Recovery.AbandonAfter.String(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolConfig{MaxConns: 4, MinConns: 1})
	if err != nil {
		return fmt.Errorf("database connection: %w", err)
	}
	defer pool.Close()

	slog.Info("postgres connected")

	container, err := app.NewSchedulerContainer(ctx, app.SchedulerConfig{
		AbandonAfter: cfg.Recovery.AbandonAfter,
		Pool:         pool,
		StaleAfter:   cfg.Recovery.StaleAfter,
	})
	if err != nil {
		return fmt.Errorf("container: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			slog.Error("failed to close container", "error", err)
		}
	}()

	if err := container.Scheduler.AddJob(ctx, "plan-recovery", cfg.Recovery.Schedule, container.RecoveryHandler.RunWithContext); err != nil {
		return fmt.Errorf("add recovery schedule: %w", err)
	}

	container.Scheduler.Start()
	slog.Info("scheduler started", "jobs", container.Scheduler.Jobs())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	sig := <-shutdown
	slog.Info("shutdown signal received", "signal", sig.String())

	cancel()

	if err := container.Scheduler.StopWithTimeout(cfg.ShutdownTimeout); err != nil {
		slog.Warn("scheduler shutdown timeout", "error", err)
	}
	slog.Info("scheduler stopped")

	slog.Info("service shutdown complete", "name", cfg.ServiceName)
	return nil
}
