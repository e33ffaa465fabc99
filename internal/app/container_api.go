package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	planqueue "github.com/specvital/planner/internal/adapter/queue/plan"
	"github.com/specvital/planner/internal/domain/plan"
	"github.com/specvital/planner/internal/handler/api"
	infraqueue "github.com/specvital/planner/internal/infra/queue"
	planuc "github.com/specvital/planner/internal/usecase/plan"
)

// APIContainer holds dependencies for the HTTP API service.
type APIContainer struct {
	Generator   plan.Generator // nil when no provider is configured
	Plans       *planuc.PlanUseCase
	QueueClient *infraqueue.Client // nil without a database
	Server      *api.Server
	Workers     *river.Workers // nil unless the API can also assemble queued plans
}

// NewAPIContainer creates the API container. Without a database, plans are
// stored in memory and only synchronous creation is available.
func NewAPIContainer(ctx context.Context, cfg ContainerConfig) (*APIContainer, error) {
	if err := cfg.ValidateAPI(); err != nil {
		return nil, fmt.Errorf("invalid container config: %w", err)
	}

	c := &APIContainer{}
	opts := useCaseOptions(cfg)

	var queue planuc.AssemblyQueue
	if cfg.Pool != nil {
		client, err := infraqueue.NewClient(ctx, cfg.Pool)
		if err != nil {
			return nil, fmt.Errorf("create queue client: %w", err)
		}
		c.QueueClient = client
		queue = client
	}

	var assembler *planuc.AssembleUseCase
	var generator api.Generator
	if cfg.AI.HasCredentials() {
		gen, err := NewGenerator(ctx, cfg.AI)
		if err != nil {
			return nil, err
		}
		c.Generator = gen
		assembler = planuc.NewAssembleUseCase(gen, opts...)
		generator = planuc.NewGenerateUseCase(gen, opts...)
	} else {
		slog.Warn("no AI provider key configured, generation endpoints will fail",
			"provider", providerName(cfg.AI),
		)
	}

	c.Plans = planuc.NewPlanUseCase(newRepository(cfg.Pool), assembler, queue, opts...)
	c.Server = api.NewServer(generator, c.Plans)

	if cfg.Pool != nil && assembler != nil {
		c.Workers = river.NewWorkers()
		river.AddWorker(c.Workers, planqueue.NewWorker(c.Plans))
	}

	return c, nil
}

// Close releases container resources.
func (c *APIContainer) Close() error {
	var errs []error

	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close queue client: %w", err))
		}
	}

	if c.Generator != nil {
		if err := c.Generator.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close AI provider: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close api container: %v", errs)
	}
	return nil
}
