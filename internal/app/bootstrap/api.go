package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/specvital/planner/internal/app"
	"github.com/specvital/planner/internal/infra/config"
	"github.com/specvital/planner/internal/infra/db"
	infraqueue "github.com/specvital/planner/internal/infra/queue"
)

const (
	readHeaderTimeout = 10 * time.Second
	// Synchronous assembly can take minutes; the write deadline covers it.
	writeTimeout = 45 * time.Minute
)

// APIConfig holds configuration for the HTTP API service.
type APIConfig struct {
	Config          *config.Config
	ServiceName     string
	ShutdownTimeout time.Duration
}

func (c *APIConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}
	if c.Config == nil {
		return fmt.Errorf("config is required")
	}
	return nil
}

func (c *APIConfig) applyDefaults() {
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = infraqueue.DefaultShutdownTimeout
	}
}

// StartAPI serves HTTP until SIGINT or SIGTERM. When IN_PROCESS_WORKER is
// set and assembly is possible, the plan queue is served in the same process.
func StartAPI(cfg APIConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg.applyDefaults()
	conf := cfg.Config

	slog.Info("starting service", "name", cfg.ServiceName)
	slog.Info("config loaded",
		"database_url", maskURL(conf.DatabaseURL),
		"ai_provider", conf.AI.Provider,
		"mock_mode", conf.AI.MockMode,
		"port", conf.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	containerCfg := app.ContainerConfig{AI: conf.AI, Section: conf.Section}
	if conf.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, conf.DatabaseURL, db.PoolConfigForWorkers(conf.PlanWorkers))
		if err != nil {
			return fmt.Errorf("database connection: %w", err)
		}
		defer pool.Close()
		slog.Info("postgres connected")

		if conf.RunMigrations {
			if err := infraqueue.Migrate(ctx, pool); err != nil {
				return err
			}
		}
		containerCfg.Pool = pool
	}

	container, err := app.NewAPIContainer(ctx, containerCfg)
	if err != nil {
		return fmt.Errorf("container: %w", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			slog.Error("failed to close container", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr:              net.JoinHostPort("", conf.Port),
		Handler:           container.Server,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	var queueServer *infraqueue.Server
	if conf.InProcessWorker && container.Workers != nil {
		queues := planQueues(conf.PlanWorkers)
		queueServer, err = infraqueue.NewServer(ctx, infraqueue.ServerConfig{
			Pool:            containerCfg.Pool,
			Queues:          queues,
			ShutdownTimeout: cfg.ShutdownTimeout,
			Workers:         container.Workers,
		})
		if err != nil {
			return fmt.Errorf("queue server: %w", err)
		}
		logQueueSubscription("api", queues)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if queueServer != nil {
		g.Go(func() error {
			if err := queueServer.Start(gctx); err != nil {
				return fmt.Errorf("start queue server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", "error", err)
		}
		if queueServer != nil {
			if err := queueServer.Stop(context.WithoutCancel(gctx)); err != nil {
				slog.Error("queue server stop error", "error", err)
			}
			slog.Info("queue server stopped")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("service shutdown complete", "name", cfg.ServiceName)
	return nil
}

func logQueueSubscription(service string, queues []infraqueue.QueueAllocation) {
	for _, q := range queues {
		slog.Info("queue subscription",
			"service", service,
			"queue", q.Name,
			"max_workers", q.MaxWorkers,
		)
	}
	if len(queues) == 0 {
		slog.Warn("no queues configured", "service", service)
	}
}
