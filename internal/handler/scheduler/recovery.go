package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/specvital/planner/internal/usecase/recovery"
)

const defaultJobTimeout = 5 * time.Minute

// Locker runs fn only if no other instance currently holds the lock.
type Locker interface {
	WithLock(ctx context.Context, fn func(context.Context) error) (bool, error)
}

// Recoverer runs one recovery pass.
type Recoverer interface {
	Execute(ctx context.Context) (recovery.Result, error)
}

type RecoveryHandler struct {
	lock    Locker
	useCase Recoverer
}

// Pass nil for lock to disable distributed locking (single-instance only).
func NewRecoveryHandler(useCase Recoverer, lock Locker) *RecoveryHandler {
	return &RecoveryHandler{
		lock:    lock,
		useCase: useCase,
	}
}

func (h *RecoveryHandler) RunWithContext(parentCtx context.Context) {
	ctx, cancel := context.WithTimeout(parentCtx, defaultJobTimeout)
	defer cancel()

	if h.lock == nil {
		_ = h.run(ctx)
		return
	}

	acquired, err := h.lock.WithLock(ctx, h.run)
	if err != nil && !acquired {
		slog.ErrorContext(ctx, "plan recovery lock acquisition failed", "error", err)
		return
	}
	if !acquired {
		slog.DebugContext(ctx, "plan recovery skipped: another instance is running")
	}
}

func (h *RecoveryHandler) run(ctx context.Context) error {
	start := time.Now()
	slog.InfoContext(ctx, "plan recovery job started")

	result, err := h.useCase.Execute(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "plan recovery job failed",
			"error", err,
			"enqueued", result.Enqueued,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	slog.InfoContext(ctx, "plan recovery job completed",
		"enqueued", result.Enqueued,
		"abandoned", result.Abandoned,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
