package plan

import (
	"context"
	_ "embed"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/specvital/planner/internal/adapter/render"
	"github.com/specvital/planner/internal/adapter/section"
	"github.com/specvital/planner/internal/domain/plan"
)

//go:embed demo_plan.md
var demoPlan string

const generatedOnLayout = "January 2, 2006"

// AssemblyQueue schedules background plan assembly.
type AssemblyQueue interface {
	EnqueuePlanAssembly(ctx context.Context, planID string) error
}

// CreateInput is a request to create and assemble a stored plan.
type CreateInput struct {
	Async        bool
	BusinessIdea string
	Name         string
	Request      plan.GenerationRequest
}

// RenderedPlan is a stored plan with its display-ready sections.
type RenderedPlan struct {
	ETag     string                   `json:"etag"`
	Record   *plan.PlanRecord         `json:"plan"`
	Sections []render.RenderedSection `json:"sections"`
}

// SectionView is one stored section, raw and formatted.
type SectionView struct {
	plan.ExtractedSection
	HTML  string `json:"html"`
	Title string `json:"title"`
}

// PlanUseCase manages stored plans.
type PlanUseCase struct {
	assembler  *AssembleUseCase
	config     Config
	extractor  *section.Extractor
	queue      AssemblyQueue
	renderer   *render.Renderer
	repository plan.Repository
}

// NewPlanUseCase creates a new PlanUseCase. queue may be nil, in which case
// asynchronous creation is unavailable; a nil assembler leaves stored plans
// readable but unassembled.
func NewPlanUseCase(repo plan.Repository, assembler *AssembleUseCase, queue AssemblyQueue, opts ...Option) *PlanUseCase {
	cfg := newConfig(opts)
	extractor := section.NewExtractor(cfg.Catalog)
	return &PlanUseCase{
		assembler:  assembler,
		config:     cfg,
		extractor:  extractor,
		queue:      queue,
		renderer:   render.NewRenderer(cfg.Catalog, extractor),
		repository: repo,
	}
}

// Create stores a new plan and assembles it inline or through the queue.
func (uc *PlanUseCase) Create(ctx context.Context, in CreateInput) (*plan.PlanRecord, error) {
	if err := validateIdea(in.BusinessIdea, in.Request); err != nil {
		return nil, err
	}
	if in.Async && uc.queue == nil {
		return nil, fmt.Errorf("%w: job queue", plan.ErrNotConfigured)
	}
	if !in.Async && uc.assembler == nil {
		return nil, plan.ErrNotConfigured
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Business plan for " + in.Request.DisplayCountry()
	}

	record := &plan.PlanRecord{
		Budget:       in.Request.Budget,
		BusinessIdea: in.BusinessIdea,
		Country:      in.Request.DisplayCountry(),
		GeneratedAt:  uc.config.Now().UTC(),
		ID:           uuid.NewString(),
		Industry:     in.Request.DisplayIndustry(),
		Name:         name,
		Status:       plan.RecordStatusPending,
	}
	if err := uc.repository.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	if !in.Async {
		return uc.assemble(ctx, record)
	}

	if err := uc.queue.EnqueuePlanAssembly(ctx, record.ID); err != nil {
		uc.markFailed(ctx, record.ID)
		return nil, fmt.Errorf("%w: %w", ErrEnqueueFailed, err)
	}

	slog.InfoContext(ctx, "plan assembly enqueued",
		"plan_id", record.ID,
		"country", record.Country,
	)
	return record, nil
}

// Assemble runs assembly for a stored plan. Plans that are already ready are
// returned unchanged.
func (uc *PlanUseCase) Assemble(ctx context.Context, id string) (*plan.PlanRecord, error) {
	record, err := uc.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status == plan.RecordStatusReady {
		slog.InfoContext(ctx, "plan already assembled, skipping",
			"plan_id", id,
		)
		return record, nil
	}
	return uc.assemble(ctx, record)
}

func (uc *PlanUseCase) assemble(ctx context.Context, record *plan.PlanRecord) (*plan.PlanRecord, error) {
	if uc.assembler == nil {
		return nil, plan.ErrNotConfigured
	}

	result, err := uc.assembler.Execute(ctx, record.Request(), record.BusinessIdea)
	if err != nil {
		uc.markFailed(ctx, record.ID)
		return nil, err
	}

	content := "# Plan generated on " + uc.config.Now().Format(generatedOnLayout) + "\n\n" + result.Document
	if err := uc.repository.UpdateContent(ctx, record.ID, content, plan.RecordStatusReady); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	record.FullContent = content
	record.Status = plan.RecordStatusReady

	slog.InfoContext(ctx, "plan stored",
		"plan_id", record.ID,
		"degraded_sections", len(result.Degraded()),
		"content_hash", hex.EncodeToString(plan.ContentHash(content)),
	)
	return record, nil
}

func (uc *PlanUseCase) markFailed(ctx context.Context, id string) {
	if err := uc.repository.UpdateStatus(context.WithoutCancel(ctx), id, plan.RecordStatusFailed); err != nil {
		slog.ErrorContext(ctx, "failed to mark plan as failed",
			"plan_id", id,
			"error", err,
		)
	}
}

// CreateDemo stores the bundled example plan.
func (uc *PlanUseCase) CreateDemo(ctx context.Context) (*plan.PlanRecord, error) {
	record := &plan.PlanRecord{
		Budget:      plan.BudgetMedium,
		Country:     "Senegal",
		FullContent: demoPlan,
		GeneratedAt: uc.config.Now().UTC(),
		ID:          uuid.NewString(),
		Industry:    "food delivery",
		IsDemo:      true,
		IsExample:   true,
		Name:        "Example business plan",
		Status:      plan.RecordStatusReady,
	}
	if err := uc.repository.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return record, nil
}

// Get returns a stored plan.
func (uc *PlanUseCase) Get(ctx context.Context, id string) (*plan.PlanRecord, error) {
	return uc.repository.Get(ctx, id)
}

// Render returns the formatted sections of a stored plan. Plans without
// content yet are returned with no sections.
func (uc *PlanUseCase) Render(ctx context.Context, id string) (*RenderedPlan, error) {
	record, err := uc.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &RenderedPlan{Record: record}
	if record.FullContent == "" {
		return out, nil
	}

	out.ETag = hex.EncodeToString(plan.ContentHash(record.FullContent))
	out.Sections = uc.renderer.RenderPlan(record.FullContent)

	if plan.HasQualityBanner(record.FullContent) {
		slog.InfoContext(ctx, "rendering plan with quality warning",
			"plan_id", id,
		)
	}
	return out, nil
}

// ExtractSection returns one section of a stored plan.
func (uc *PlanUseCase) ExtractSection(ctx context.Context, id, rawSectionID string) (*SectionView, error) {
	sectionID, err := plan.ParseSectionID(rawSectionID)
	if err != nil {
		return nil, err
	}

	record, err := uc.repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	extracted := uc.extractor.Extract(record.FullContent, sectionID)
	return &SectionView{
		ExtractedSection: extracted,
		HTML:             render.Format(extracted.Text),
		Title:            uc.config.Catalog.Title(sectionID),
	}, nil
}

// List returns recently generated plans, newest first.
func (uc *PlanUseCase) List(ctx context.Context, limit int) ([]plan.PlanRecord, error) {
	return uc.repository.List(ctx, limit)
}
