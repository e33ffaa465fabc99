package app

import (
	"context"
	"fmt"

	"github.com/riverqueue/river"

	planqueue "github.com/specvital/planner/internal/adapter/queue/plan"
	"github.com/specvital/planner/internal/adapter/repository/postgres"
	"github.com/specvital/planner/internal/domain/plan"
	planuc "github.com/specvital/planner/internal/usecase/plan"
)

// WorkerContainer holds dependencies for the plan assembly worker service.
type WorkerContainer struct {
	Generator  plan.Generator
	PlanWorker *planqueue.Worker
	Workers    *river.Workers
}

// NewWorkerContainer creates and initializes a new worker container with all required dependencies.
func NewWorkerContainer(ctx context.Context, cfg ContainerConfig) (*WorkerContainer, error) {
	if err := cfg.ValidateWorker(); err != nil {
		return nil, fmt.Errorf("invalid container config: %w", err)
	}

	gen, err := NewGenerator(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}

	opts := useCaseOptions(cfg)
	assembler := planuc.NewAssembleUseCase(gen, opts...)
	plans := planuc.NewPlanUseCase(postgres.NewPlanRepository(cfg.Pool), assembler, nil, opts...)
	planWorker := planqueue.NewWorker(plans)

	workers := river.NewWorkers()
	river.AddWorker(workers, planWorker)

	return &WorkerContainer{
		Generator:  gen,
		PlanWorker: planWorker,
		Workers:    workers,
	}, nil
}

// Close releases container resources.
func (c *WorkerContainer) Close() error {
	if c.Generator != nil {
		if err := c.Generator.Close(); err != nil {
			return fmt.Errorf("close worker container: close AI provider: %w", err)
		}
	}
	return nil
}
