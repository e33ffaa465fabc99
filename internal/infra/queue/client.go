package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"

	planqueue "github.com/specvital/planner/internal/adapter/queue/plan"
)

// Client is insert-only (no worker).
type Client struct {
	client *river.Client[pgx.Tx]
}

func NewClient(ctx context.Context, pool *pgxpool.Pool) (*Client, error) {
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		return nil, err
	}

	return &Client{
		client: client,
	}, nil
}

func (c *Client) Close() error {
	// river.Client doesn't need explicit close for insert-only mode
	return nil
}

// EnqueuePlanAssembly inserts an assemble job. A job already queued for the
// same plan is not duplicated.
func (c *Client) EnqueuePlanAssembly(ctx context.Context, planID string) error {
	result, err := c.client.Insert(ctx, planqueue.Args{PlanID: planID}, nil)
	if err != nil {
		return fmt.Errorf("insert plan assembly job: %w", err)
	}
	if result.UniqueSkippedAsDuplicate {
		slog.InfoContext(ctx, "plan assembly already queued",
			"plan_id", planID,
			"job_id", result.Job.ID,
		)
	}
	return nil
}

// Migrate brings the River schema up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("create river migrator: %w", err)
	}

	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return fmt.Errorf("run river migrations: %w", err)
	}

	for _, v := range res.Versions {
		slog.InfoContext(ctx, "river migration applied", "version", v.Version)
	}
	return nil
}
