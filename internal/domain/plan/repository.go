package plan

import (
	"context"
	"time"
)

// Repository persists plan records. Writes are last-writer-wins.
type Repository interface {
	Get(ctx context.Context, id string) (*PlanRecord, error)
	List(ctx context.Context, limit int) ([]PlanRecord, error)
	Save(ctx context.Context, record *PlanRecord) error
	UpdateContent(ctx context.Context, id, content string, status RecordStatus) error
	UpdateStatus(ctx context.Context, id string, status RecordStatus) error
}

// PendingRepository finds plans whose assembly never finished.
type PendingRepository interface {
	ListPending(ctx context.Context, before time.Time, limit int) ([]PlanRecord, error)
	UpdateStatus(ctx context.Context, id string, status RecordStatus) error
}
