package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/specvital/planner/internal/adapter/repository/postgres"
	"github.com/specvital/planner/internal/handler/scheduler"
	infraqueue "github.com/specvital/planner/internal/infra/queue"
	infrascheduler "github.com/specvital/planner/internal/infra/scheduler"
	"github.com/specvital/planner/internal/usecase/recovery"
)

const recoveryLockKey = "planner:plan-recovery"

// SchedulerConfig holds configuration for the scheduler container.
type SchedulerConfig struct {
	AbandonAfter time.Duration
	Pool         *pgxpool.Pool
	StaleAfter   time.Duration
}

// SchedulerContainer holds dependencies for the stale plan scheduler.
type SchedulerContainer struct {
	QueueClient     *infraqueue.Client
	RecoveryHandler *scheduler.RecoveryHandler
	Scheduler       *infrascheduler.Scheduler
}

func NewSchedulerContainer(ctx context.Context, cfg SchedulerConfig) (*SchedulerContainer, error) {
	if cfg.Pool == nil {
		return nil, fmt.Errorf("invalid container config: pool is required")
	}

	queueClient, err := infraqueue.NewClient(ctx, cfg.Pool)
	if err != nil {
		return nil, fmt.Errorf("create queue client: %w", err)
	}

	useCase := recovery.NewRecoveryUseCase(postgres.NewPlanRepository(cfg.Pool), queueClient, recovery.Config{
		AbandonAfter: cfg.AbandonAfter,
		StaleAfter:   cfg.StaleAfter,
	})
	lock := infrascheduler.NewDistributedLock(cfg.Pool, recoveryLockKey)

	return &SchedulerContainer{
		QueueClient:     queueClient,
		RecoveryHandler: scheduler.NewRecoveryHandler(useCase, lock),
		Scheduler:       infrascheduler.New(),
	}, nil
}

// Close releases container resources.
func (c *SchedulerContainer) Close() error {
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			return fmt.Errorf("close scheduler container: close queue client: %w", err)
		}
	}
	return nil
}
