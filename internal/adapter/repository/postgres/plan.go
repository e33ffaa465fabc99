package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/specvital/planner/internal/domain/plan"
	"github.com/specvital/planner/internal/infra/db"
)

const defaultListLimit = 50

var (
	_ plan.Repository        = (*PlanRepository)(nil)
	_ plan.PendingRepository = (*PlanRepository)(nil)
)

// PlanRepository implements plan.Repository for PostgreSQL.
type PlanRepository struct {
	pool *pgxpool.Pool
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

// Get retrieves a plan by id.
// Returns plan.ErrPlanNotFound if the id does not exist.
func (r *PlanRepository) Get(ctx context.Context, id string) (*plan.PlanRecord, error) {
	record, err := scanPlan(r.pool.QueryRow(ctx, db.GetPlan, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, plan.ErrPlanNotFound
		}
		return nil, fmt.Errorf("get plan %q: %w", id, err)
	}
	return record, nil
}

// List returns the most recently generated plans.
func (r *PlanRepository) List(ctx context.Context, limit int) ([]plan.PlanRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := r.pool.Query(ctx, db.ListPlans, limit)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	records := make([]plan.PlanRecord, 0, limit)
	for rows.Next() {
		record, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return records, nil
}

// ListPending returns pending plans created before the cutoff, oldest first.
func (r *PlanRepository) ListPending(ctx context.Context, before time.Time, limit int) ([]plan.PlanRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := r.pool.Query(ctx, db.ListPendingPlans, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending plans: %w", err)
	}
	defer rows.Close()

	var records []plan.PlanRecord
	for rows.Next() {
		record, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending plans: %w", err)
	}
	return records, nil
}

// Save inserts the plan or replaces the stored row with the same id.
func (r *PlanRepository) Save(ctx context.Context, record *plan.PlanRecord) error {
	if record.ID == "" {
		return fmt.Errorf("save plan: %w: id cannot be empty", plan.ErrInvalidInput)
	}

	status := record.Status
	if status == "" {
		status = plan.RecordStatusPending
	}
	generatedAt := record.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, db.UpsertPlan,
		record.ID,
		record.Name,
		record.BusinessIdea,
		record.Industry,
		record.Country,
		string(record.Budget),
		record.FullContent,
		contentHash(record.FullContent),
		string(status),
		record.IsDemo,
		record.IsExample,
		generatedAt,
	)
	if err != nil {
		return fmt.Errorf("save plan %q: %w", record.ID, err)
	}
	return nil
}

// UpdateContent stores assembled content and its hash with a new status.
func (r *PlanRepository) UpdateContent(ctx context.Context, id, content string, status plan.RecordStatus) error {
	tag, err := r.pool.Exec(ctx, db.UpdatePlanContent, id, content, contentHash(content), string(status))
	if err != nil {
		return fmt.Errorf("update plan content %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return plan.ErrPlanNotFound
	}
	return nil
}

// UpdateStatus changes the status of a stored plan.
func (r *PlanRepository) UpdateStatus(ctx context.Context, id string, status plan.RecordStatus) error {
	tag, err := r.pool.Exec(ctx, db.UpdatePlanStatus, id, string(status))
	if err != nil {
		return fmt.Errorf("update plan status %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return plan.ErrPlanNotFound
	}
	return nil
}

func scanPlan(row pgx.Row) (*plan.PlanRecord, error) {
	var (
		record      plan.PlanRecord
		budget      string
		status      string
		hash        []byte
		generatedAt time.Time
	)
	err := row.Scan(
		&record.ID,
		&record.Name,
		&record.BusinessIdea,
		&record.Industry,
		&record.Country,
		&budget,
		&record.FullContent,
		&hash,
		&status,
		&record.IsDemo,
		&record.IsExample,
		&generatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Budget = plan.Budget(budget)
	record.Status = plan.RecordStatus(status)
	record.GeneratedAt = generatedAt.UTC()
	return &record, nil
}

// contentHash is NULL for plans that have no content yet.
func contentHash(content string) []byte {
	if content == "" {
		return nil
	}
	return plan.ContentHash(content)
}
