package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/specvital/planner/internal/domain/plan"
)

const defaultListLimit = 50

var (
	_ plan.Repository        = (*PlanRepository)(nil)
	_ plan.PendingRepository = (*PlanRepository)(nil)
)

// PlanRepository keeps plans in process memory. Used when no database is
// configured; contents are lost on restart.
type PlanRepository struct {
	mu    sync.RWMutex
	plans map[string]plan.PlanRecord
}

func NewPlanRepository() *PlanRepository {
	return &PlanRepository{plans: make(map[string]plan.PlanRecord)}
}

func (r *PlanRepository) Get(_ context.Context, id string) (*plan.PlanRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.plans[id]
	if !ok {
		return nil, plan.ErrPlanNotFound
	}
	return &record, nil
}

// List returns plans newest first.
func (r *PlanRepository) List(_ context.Context, limit int) ([]plan.PlanRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	r.mu.RLock()
	records := make([]plan.PlanRecord, 0, len(r.plans))
	for _, record := range r.plans {
		records = append(records, record)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].GeneratedAt.Equal(records[j].GeneratedAt) {
			return records[i].GeneratedAt.After(records[j].GeneratedAt)
		}
		return records[i].ID < records[j].ID
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// ListPending returns pending plans created before the cutoff, oldest first.
func (r *PlanRepository) ListPending(_ context.Context, before time.Time, limit int) ([]plan.PlanRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	r.mu.RLock()
	var records []plan.PlanRecord
	for _, record := range r.plans {
		if record.Status == plan.RecordStatusPending && record.GeneratedAt.Before(before) {
			records = append(records, record)
		}
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].GeneratedAt.Equal(records[j].GeneratedAt) {
			return records[i].GeneratedAt.Before(records[j].GeneratedAt)
		}
		return records[i].ID < records[j].ID
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Save stores a copy of record. The last write for an id wins.
func (r *PlanRepository) Save(_ context.Context, record *plan.PlanRecord) error {
	if record.ID == "" {
		return fmt.Errorf("save plan: %w: id cannot be empty", plan.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[record.ID] = *record
	return nil
}

func (r *PlanRepository) UpdateContent(_ context.Context, id, content string, status plan.RecordStatus) error {
	return r.update(id, func(record *plan.PlanRecord) {
		record.FullContent = content
		record.Status = status
	})
}

func (r *PlanRepository) UpdateStatus(_ context.Context, id string, status plan.RecordStatus) error {
	return r.update(id, func(record *plan.PlanRecord) {
		record.Status = status
	})
}

func (r *PlanRepository) update(id string, fn func(*plan.PlanRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.plans[id]
	if !ok {
		return plan.ErrPlanNotFound
	}
	fn(&record)
	r.plans[id] = record
	return nil
}
