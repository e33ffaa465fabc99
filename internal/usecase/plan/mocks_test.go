package plan

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specvital/planner/internal/adapter/ai/reliability"
	"github.com/specvital/planner/internal/domain/plan"
)

type mockGenerator struct {
	calls      atomic.Int32
	generateFn func(ctx context.Context, p plan.Prompt) (string, *plan.TokenUsage, error)
}

func (m *mockGenerator) Generate(ctx context.Context, p plan.Prompt) (string, *plan.TokenUsage, error) {
	m.calls.Add(1)
	if m.generateFn != nil {
		return m.generateFn(ctx, p)
	}
	return "", nil, nil
}

func (m *mockGenerator) Close() error {
	return nil
}

// sectionBodyGenerator answers every section prompt with a long enough body.
func sectionBodyGenerator() *mockGenerator {
	return &mockGenerator{
		generateFn: func(_ context.Context, p plan.Prompt) (string, *plan.TokenUsage, error) {
			return fmt.Sprintf("Content for %s in Kenya. %s", p.Section, strings.Repeat("Detailed analysis sentence. ", 5)), nil, nil
		},
	}
}

type mockRepository struct {
	mu      sync.Mutex
	records map[string]plan.PlanRecord

	saveFn          func(ctx context.Context, record *plan.PlanRecord) error
	updateContentFn func(ctx context.Context, id, content string, status plan.RecordStatus) error
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[string]plan.PlanRecord)}
}

func (m *mockRepository) Get(_ context.Context, id string) (*plan.PlanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return nil, plan.ErrPlanNotFound
	}
	return &r, nil
}

func (m *mockRepository) List(_ context.Context, limit int) ([]plan.PlanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []plan.PlanRecord
	for _, r := range m.records {
		if len(out) == limit {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRepository) Save(ctx context.Context, record *plan.PlanRecord) error {
	if m.saveFn != nil {
		if err := m.saveFn(ctx, record); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = *record
	return nil
}

func (m *mockRepository) UpdateContent(ctx context.Context, id, content string, status plan.RecordStatus) error {
	if m.updateContentFn != nil {
		if err := m.updateContentFn(ctx, id, content, status); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return plan.ErrPlanNotFound
	}
	r.FullContent = content
	r.Status = status
	m.records[id] = r
	return nil
}

func (m *mockRepository) UpdateStatus(_ context.Context, id string, status plan.RecordStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return plan.ErrPlanNotFound
	}
	r.Status = status
	m.records[id] = r
	return nil
}

type mockQueue struct {
	enqueued  []string
	enqueueFn func(ctx context.Context, planID string) error
}

func (m *mockQueue) EnqueuePlanAssembly(ctx context.Context, planID string) error {
	m.enqueued = append(m.enqueued, planID)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, planID)
	}
	return nil
}

func fastRetry() reliability.RetryConfig {
	return reliability.RetryConfig{
		AttemptTimeout: 50 * time.Millisecond,
		InitialBackoff: time.Millisecond,
		MaxAttempts:    3,
		MaxBackoff:     time.Millisecond,
		Multiplier:     1,
	}
}

func kenyaRequest() plan.GenerationRequest {
	return plan.GenerationRequest{
		Budget:   plan.BudgetMedium,
		Country:  "Kenya",
		Industry: "technology",
	}
}

const kenyaIdea = `## Pain Point Identified

Small farmers in Kenya cannot reach buyers in the cities.

## Concept Summary

A marketplace app connecting farmers with urban grocers.

## Unique Value Proposition

Fair prices and next-day delivery.

## Target Audience

Grocers in Nairobi and Mombasa.`
