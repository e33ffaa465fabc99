package plan

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/riverqueue/river"

	"github.com/specvital/planner/internal/domain/plan"
)

const (
	// Queue name for plan assembly jobs (underscore required - River disallows colons)
	QueueDefault = "plan_default"

	jobKind          = "plan:assemble"
	maxRetryAttempts = 3
	// 8 sections × 3 attempts × 90s plus retry delays
	jobTimeout     = 40 * time.Minute
	initialBackoff = 10 * time.Second
)

// Args represents the arguments for a plan assembly job.
type Args struct {
	PlanID string `json:"plan_id" river:"unique"`
}

// Kind returns the unique identifier for this job type.
func (Args) Kind() string { return jobKind }

// InsertOpts returns the River insert options for this job type.
func (Args) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueDefault,
		MaxAttempts: maxRetryAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	}
}

// Assembler assembles a stored plan by id.
type Assembler interface {
	Assemble(ctx context.Context, id string) (*plan.PlanRecord, error)
}

// Worker processes plan assembly jobs.
type Worker struct {
	river.WorkerDefaults[Args]
	assembler Assembler
}

// NewWorker creates a new plan assembly worker.
func NewWorker(assembler Assembler) *Worker {
	return &Worker{assembler: assembler}
}

// Timeout returns the maximum duration for this job.
func (w *Worker) Timeout(job *river.Job[Args]) time.Duration {
	return jobTimeout
}

// NextRetry returns the next retry time with exponential backoff.
// Backoff: 10s, 40s, 90s (attempt² × 10s)
func (w *Worker) NextRetry(job *river.Job[Args]) time.Time {
	attempt := job.Attempt
	backoff := time.Duration(attempt*attempt) * initialBackoff
	return time.Now().Add(backoff)
}

// Work assembles the plan named by the job.
func (w *Worker) Work(ctx context.Context, job *river.Job[Args]) error {
	args := job.Args

	if strings.TrimSpace(args.PlanID) == "" {
		err := errors.New("plan_id is required")
		slog.WarnContext(ctx, "invalid job arguments, cancelling",
			"job_id", job.ID,
			"error", err,
		)
		return river.JobCancel(err)
	}

	startTime := time.Now()
	slog.InfoContext(ctx, "processing plan assembly task",
		"job_id", job.ID,
		"plan_id", args.PlanID,
		"attempt", job.Attempt,
	)

	record, err := w.assembler.Assemble(ctx, args.PlanID)
	if err != nil {
		return w.handleError(ctx, job, err)
	}

	slog.InfoContext(ctx, "plan assembly task completed",
		"job_id", job.ID,
		"plan_id", args.PlanID,
		"status", record.Status,
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	return nil
}

func (w *Worker) handleError(ctx context.Context, job *river.Job[Args], err error) error {
	args := job.Args

	if isPermanentError(err) {
		slog.WarnContext(ctx, "permanent error, cancelling job",
			"job_id", job.ID,
			"plan_id", args.PlanID,
			"attempt", job.Attempt,
			"max_attempts", maxRetryAttempts,
			"will_retry", false,
			"error", err,
		)
		return river.JobCancel(err)
	}

	willRetry := job.Attempt < maxRetryAttempts
	slog.ErrorContext(ctx, "plan assembly task failed",
		"job_id", job.ID,
		"plan_id", args.PlanID,
		"attempt", job.Attempt,
		"max_attempts", maxRetryAttempts,
		"will_retry", willRetry,
		"error", err,
	)

	return err
}

func isPermanentError(err error) bool {
	return errors.Is(err, plan.ErrPlanNotFound) ||
		errors.Is(err, plan.ErrInvalidInput)
}
