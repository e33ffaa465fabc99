package plan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/specvital/planner/internal/adapter/section"
	"github.com/specvital/planner/internal/domain/plan"
)

func fixedClock() time.Time {
	return time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)
}

func newTestPlanUseCase(repo *mockRepository, queue AssemblyQueue) *PlanUseCase {
	opts := []Option{WithClock(fixedClock), WithSectionRetry(fastRetry())}
	assembler := NewAssembleUseCase(sectionBodyGenerator(), opts...)
	return NewPlanUseCase(repo, assembler, queue, opts...)
}

func kenyaInput() CreateInput {
	return CreateInput{BusinessIdea: kenyaIdea, Request: kenyaRequest()}
}

func TestPlanUseCase_Create(t *testing.T) {
	t.Run("should assemble synchronously and store a dated document", func(t *testing.T) {
		repo := newMockRepository()
		uc := newTestPlanUseCase(repo, nil)

		record, err := uc.Create(context.Background(), kenyaInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if record.Status != plan.RecordStatusReady {
			t.Errorf("status = %s, want ready", record.Status)
		}
		if record.Name != "Business plan for Kenya" {
			t.Errorf("unexpected default name %q", record.Name)
		}
		stored, _ := repo.Get(context.Background(), record.ID)
		if !strings.HasPrefix(stored.FullContent, "# Plan generated on October 14, 2026\n\n") {
			t.Errorf("unexpected content prefix %q", stored.FullContent[:60])
		}
		if stored.Status != plan.RecordStatusReady {
			t.Errorf("stored status = %s, want ready", stored.Status)
		}
	})

	t.Run("should keep an explicit name", func(t *testing.T) {
		uc := newTestPlanUseCase(newMockRepository(), nil)
		in := kenyaInput()
		in.Name = "  Farm Link  "

		record, err := uc.Create(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.Name != "Farm Link" {
			t.Errorf("name = %q, want Farm Link", record.Name)
		}
	})

	t.Run("should require a queue for asynchronous creation", func(t *testing.T) {
		repo := newMockRepository()
		uc := newTestPlanUseCase(repo, nil)
		in := kenyaInput()
		in.Async = true

		_, err := uc.Create(context.Background(), in)

		if !errors.Is(err, plan.ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured, got %v", err)
		}
		if len(repo.records) != 0 {
			t.Error("nothing should be stored without a queue")
		}
	})

	t.Run("should enqueue pending plans", func(t *testing.T) {
		repo := newMockRepository()
		queue := &mockQueue{}
		uc := newTestPlanUseCase(repo, queue)
		in := kenyaInput()
		in.Async = true

		record, err := uc.Create(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if record.Status != plan.RecordStatusPending {
			t.Errorf("status = %s, want pending", record.Status)
		}
		if len(queue.enqueued) != 1 || queue.enqueued[0] != record.ID {
			t.Errorf("expected plan %s enqueued, got %v", record.ID, queue.enqueued)
		}
	})

	t.Run("should mark the plan failed when enqueue fails", func(t *testing.T) {
		repo := newMockRepository()
		queue := &mockQueue{
			enqueueFn: func(context.Context, string) error {
				return errors.New("queue unavailable")
			},
		}
		uc := newTestPlanUseCase(repo, queue)
		in := kenyaInput()
		in.Async = true

		_, err := uc.Create(context.Background(), in)

		if !errors.Is(err, ErrEnqueueFailed) {
			t.Fatalf("expected ErrEnqueueFailed, got %v", err)
		}
		stored, _ := repo.Get(context.Background(), queue.enqueued[0])
		if stored.Status != plan.RecordStatusFailed {
			t.Errorf("status = %s, want failed", stored.Status)
		}
	})

	t.Run("should wrap save failures", func(t *testing.T) {
		repo := newMockRepository()
		repo.saveFn = func(context.Context, *plan.PlanRecord) error {
			return errors.New("disk full")
		}
		uc := newTestPlanUseCase(repo, nil)

		_, err := uc.Create(context.Background(), kenyaInput())

		if !errors.Is(err, ErrSaveFailed) {
			t.Fatalf("expected ErrSaveFailed, got %v", err)
		}
	})

	t.Run("should reject a missing idea", func(t *testing.T) {
		uc := newTestPlanUseCase(newMockRepository(), nil)
		in := kenyaInput()
		in.BusinessIdea = ""

		_, err := uc.Create(context.Background(), in)

		if !errors.Is(err, plan.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestPlanUseCase_Assemble(t *testing.T) {
	t.Run("should assemble a pending plan", func(t *testing.T) {
		repo := newMockRepository()
		uc := newTestPlanUseCase(repo, &mockQueue{})
		in := kenyaInput()
		in.Async = true
		created, err := uc.Create(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		record, err := uc.Assemble(context.Background(), created.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.Status != plan.RecordStatusReady || record.FullContent == "" {
			t.Errorf("expected ready plan with content, got status %s", record.Status)
		}
	})

	t.Run("should skip plans that are already ready", func(t *testing.T) {
		repo := newMockRepository()
		repo.records["ready"] = plan.PlanRecord{ID: "ready", FullContent: "done", Status: plan.RecordStatusReady}
		repo.updateContentFn = func(context.Context, string, string, plan.RecordStatus) error {
			t.Error("ready plan should not be rewritten")
			return nil
		}
		uc := newTestPlanUseCase(repo, nil)

		record, err := uc.Assemble(context.Background(), "ready")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if record.FullContent != "done" {
			t.Errorf("unexpected content %q", record.FullContent)
		}
	})

	t.Run("should report unknown plans", func(t *testing.T) {
		uc := newTestPlanUseCase(newMockRepository(), nil)

		_, err := uc.Assemble(context.Background(), "missing")

		if !errors.Is(err, plan.ErrPlanNotFound) {
			t.Fatalf("expected ErrPlanNotFound, got %v", err)
		}
	})
}

func TestPlanUseCase_Render(t *testing.T) {
	t.Run("should render every section of the demo plan", func(t *testing.T) {
		uc := newTestPlanUseCase(newMockRepository(), nil)
		demo, err := uc.CreateDemo(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !demo.IsDemo || !demo.IsExample {
			t.Error("demo plan should be flagged as demo and example")
		}

		rendered, err := uc.Render(context.Background(), demo.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(rendered.ETag) != 64 {
			t.Errorf("etag length = %d, want 64", len(rendered.ETag))
		}
		if len(rendered.Sections) != len(plan.Sections()) {
			t.Fatalf("expected %d sections, got %d", len(plan.Sections()), len(rendered.Sections))
		}
		for _, s := range rendered.Sections {
			if s.Method != section.MethodHeading {
				t.Errorf("section %s extracted by %s, want heading", s.ID, s.Method)
			}
			if s.HTML == "" {
				t.Errorf("section %s rendered empty", s.ID)
			}
		}
	})

	t.Run("should return no sections for pending plans", func(t *testing.T) {
		repo := newMockRepository()
		repo.records["p1"] = plan.PlanRecord{ID: "p1", Status: plan.RecordStatusPending}
		uc := newTestPlanUseCase(repo, nil)

		rendered, err := uc.Render(context.Background(), "p1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rendered.Sections != nil || rendered.ETag != "" {
			t.Errorf("expected no sections and no etag, got %d sections", len(rendered.Sections))
		}
	})
}

func TestPlanUseCase_ExtractSection(t *testing.T) {
	uc := newTestPlanUseCase(newMockRepository(), nil)
	demo, err := uc.CreateDemo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("should reject unknown section ids", func(t *testing.T) {
		_, err := uc.ExtractSection(context.Background(), demo.ID, "appendix")

		if !errors.Is(err, plan.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("should extract and format a section", func(t *testing.T) {
		view, err := uc.ExtractSection(context.Background(), demo.ID, string(plan.SectionMarketAnalysis))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if view.Method != section.MethodHeading {
			t.Errorf("method = %s, want heading", view.Method)
		}
		if view.Title != plan.DefaultCatalog().Title(plan.SectionMarketAnalysis) {
			t.Errorf("unexpected title %q", view.Title)
		}
		if !strings.Contains(view.HTML, "<table") {
			t.Error("expected the market table to be rendered")
		}
	})
}

func TestPlanUseCase_WithoutAssembler(t *testing.T) {
	t.Run("should report a missing provider on synchronous creation", func(t *testing.T) {
		repo := newMockRepository()
		uc := NewPlanUseCase(repo, nil, nil)

		_, err := uc.Create(context.Background(), kenyaInput())

		if !errors.Is(err, plan.ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured, got %v", err)
		}
		if len(repo.records) != 0 {
			t.Error("nothing should be stored without an assembler")
		}
	})
}
