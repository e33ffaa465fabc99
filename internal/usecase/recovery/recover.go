package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/specvital/planner/internal/domain/plan"
)

// Tuned for a 10m cron interval: three failures in a row means the queue
// itself is down and the next run will retry anyway.
const maxConsecutiveEnqueueFailures = 3

const (
	DefaultStaleAfter   = 45 * time.Minute
	DefaultAbandonAfter = 24 * time.Hour
	defaultBatchSize    = 100
)

var ErrCircuitBreakerOpen = errors.New("circuit breaker: too many consecutive enqueue failures")

// AssemblyQueue schedules background plan assembly.
type AssemblyQueue interface {
	EnqueuePlanAssembly(ctx context.Context, planID string) error
}

// Config controls which pending plans are retried and which are given up on.
type Config struct {
	AbandonAfter time.Duration
	BatchSize    int
	Now          func() time.Time
	StaleAfter   time.Duration
}

func (c *Config) applyDefaults() {
	if c.StaleAfter <= 0 {
		c.StaleAfter = DefaultStaleAfter
	}
	if c.AbandonAfter < c.StaleAfter {
		c.AbandonAfter = DefaultAbandonAfter
	}
	if c.AbandonAfter < c.StaleAfter {
		c.AbandonAfter = c.StaleAfter
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Result summarizes one recovery run.
type Result struct {
	Abandoned  int
	Candidates int
	Enqueued   int
}

// RecoveryUseCase re-enqueues plans whose assembly job was lost (for
// example when the API accepted a plan while the queue was down) and marks
// plans that stayed pending for too long as failed.
type RecoveryUseCase struct {
	config     Config
	queue      AssemblyQueue
	repository plan.PendingRepository
}

func NewRecoveryUseCase(repository plan.PendingRepository, queue AssemblyQueue, config Config) *RecoveryUseCase {
	config.applyDefaults()
	return &RecoveryUseCase{
		config:     config,
		queue:      queue,
		repository: repository,
	}
}

// Execute runs one recovery pass. Enqueueing is idempotent: the queue
// deduplicates jobs for the same plan.
// Returns ErrCircuitBreakerOpen if too many consecutive enqueue failures occur.
func (uc *RecoveryUseCase) Execute(ctx context.Context) (Result, error) {
	now := uc.config.Now()
	var result Result

	records, err := uc.repository.ListPending(ctx, now.Add(-uc.config.StaleAfter), uc.config.BatchSize)
	if err != nil {
		return result, fmt.Errorf("list pending plans: %w", err)
	}
	result.Candidates = len(records)

	if len(records) == 0 {
		slog.InfoContext(ctx, "no stale plans to recover")
		return result, nil
	}

	abandonBefore := now.Add(-uc.config.AbandonAfter)
	var consecutiveFailures int

	for _, record := range records {
		if consecutiveFailures >= maxConsecutiveEnqueueFailures {
			slog.ErrorContext(ctx, "circuit breaker open, aborting recovery",
				"consecutive_failures", consecutiveFailures,
				"enqueued_before_abort", result.Enqueued,
			)
			return result, fmt.Errorf("%w: %d failures", ErrCircuitBreakerOpen, consecutiveFailures)
		}

		if record.GeneratedAt.Before(abandonBefore) {
			if err := uc.repository.UpdateStatus(ctx, record.ID, plan.RecordStatusFailed); err != nil {
				slog.ErrorContext(ctx, "failed to mark abandoned plan as failed",
					"plan_id", record.ID,
					"error", err,
				)
				continue
			}
			result.Abandoned++
			slog.WarnContext(ctx, "abandoned stale plan",
				"plan_id", record.ID,
				"pending_for", now.Sub(record.GeneratedAt).Round(time.Minute).String(),
			)
			continue
		}

		if err := uc.queue.EnqueuePlanAssembly(ctx, record.ID); err != nil {
			consecutiveFailures++
			slog.ErrorContext(ctx, "failed to re-enqueue stale plan",
				"plan_id", record.ID,
				"consecutive_failures", consecutiveFailures,
				"error", err,
			)
			continue
		}

		consecutiveFailures = 0
		result.Enqueued++
		slog.DebugContext(ctx, "re-enqueued stale plan", "plan_id", record.ID)
	}

	slog.InfoContext(ctx, "plan recovery completed",
		"total_candidates", result.Candidates,
		"enqueued", result.Enqueued,
		"abandoned", result.Abandoned,
	)

	return result, nil
}
