package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs named jobs on cron schedules. Overlapping runs of the same
// job are skipped.
type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	logger := cron.VerbosePrintfLogger(slogPrintf{})
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) StopWithTimeout(timeout time.Duration) error {
	stopCtx := s.cron.Stop()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-stopCtx.Done():
		return nil
	case <-timer.C:
		return fmt.Errorf("scheduler shutdown timeout after %v", timeout)
	}
}

// AddJob registers fn under name. Spec follows cron expression format or
// predefined schedules like "@every 10m". Each run receives ctx.
func (s *Scheduler) AddJob(ctx context.Context, name, spec string, fn func(context.Context)) error {
	id, err := s.cron.AddFunc(spec, func() { fn(ctx) })
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}

	slog.InfoContext(ctx, "job scheduled",
		"job", name,
		"schedule", spec,
		"entry_id", int(id),
	)
	return nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

type slogPrintf struct{}

func (slogPrintf) Printf(format string, args ...any) {
	slog.Debug(fmt.Sprintf(format, args...), "component", "cron")
}
