package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/specvital/planner/internal/adapter/ai/prompt"
	"github.com/specvital/planner/internal/adapter/ai/reliability"
	"github.com/specvital/planner/internal/domain/plan"
)

const unavailableSection = "This section could not be generated. Please try regenerating the plan or edit this section manually."

// AssembleResult is a fully assembled plan.
type AssembleResult struct {
	Document string
	KeyInfo  plan.KeyInformation
	Plan     *plan.Plan
	Results  map[plan.SectionID]plan.SectionResult
}

// Degraded returns the sections that fell back to deterministic text.
func (r *AssembleResult) Degraded() []plan.SectionID {
	var ids []plan.SectionID
	for _, id := range plan.Sections() {
		if res, ok := r.Results[id]; ok && res.Status == plan.SectionStatusDegraded {
			ids = append(ids, id)
		}
	}
	return ids
}

// AssembleUseCase generates a plan one section at a time.
type AssembleUseCase struct {
	config    Config
	generator plan.Generator
	retryer   *reliability.Retryer
}

// NewAssembleUseCase creates a new AssembleUseCase.
func NewAssembleUseCase(generator plan.Generator, opts ...Option) *AssembleUseCase {
	cfg := newConfig(opts)
	return &AssembleUseCase{
		config:    cfg,
		generator: generator,
		retryer:   reliability.NewRetryer(cfg.SectionRetry),
	}
}

// Execute generates all sections sequentially and combines them. Sections
// that keep failing are replaced by fallback text and flag the document with
// a quality banner. Only cancellation of ctx aborts the assembly.
func (uc *AssembleUseCase) Execute(ctx context.Context, req plan.GenerationRequest, idea string) (*AssembleResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	info := plan.ExtractKeyInformation(idea)
	sc := prompt.NewSectionContext(req, info)
	country := req.DisplayCountry()

	doc := plan.NewPlan(country)
	results := make(map[plan.SectionID]plan.SectionResult, len(plan.Sections()))

	slog.InfoContext(ctx, "plan assembly started",
		"country", country,
		"industry", sc.Industry,
		"idea_length", len(idea),
	)

	for _, spec := range uc.config.Catalog.Specs() {
		res, err := uc.generateSection(ctx, spec.ID, sc, info)
		results[spec.ID] = res
		if err != nil {
			slog.WarnContext(ctx, "plan assembly aborted",
				"section_id", spec.ID,
				"completed_sections", len(results)-1,
				"duration_ms", time.Since(startTime).Milliseconds(),
				"error", err,
			)
			return nil, err
		}

		doc.Set(spec.ID, res.Text)
		if res.Status == plan.SectionStatusDegraded {
			doc.Banner = true
		}
	}

	markdown := doc.Markdown(uc.config.Catalog)
	if !strings.Contains(strings.ToLower(markdown), strings.ToLower(country)) {
		slog.WarnContext(ctx, "assembled plan does not mention the target country",
			"country", country,
		)
	}

	result := &AssembleResult{
		Document: markdown,
		KeyInfo:  info,
		Plan:     doc,
		Results:  results,
	}

	slog.InfoContext(ctx, "plan assembly completed",
		"country", country,
		"degraded_sections", len(result.Degraded()),
		"document_length", len(markdown),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return result, nil
}

// generateSection runs the retry policy for one section. The returned error
// is non-nil only when ctx itself is done.
func (uc *AssembleUseCase) generateSection(ctx context.Context, id plan.SectionID, sc prompt.SectionContext, info plan.KeyInformation) (plan.SectionResult, error) {
	p, err := prompt.BuildSectionPrompt(id, sc)
	if err != nil {
		return plan.Degraded(id, fallbackText(id, info), err.Error(), 0), nil
	}

	var text string
	attempts, err := uc.retryer.Do(ctx, func(attemptCtx context.Context, attempt int) error {
		out, _, genErr := uc.generator.Generate(attemptCtx, p)
		if genErr != nil {
			slog.WarnContext(ctx, "section attempt failed",
				"section_id", id,
				"attempt", attempt,
				"error", genErr,
			)
			if attemptCtx.Err() != nil || errors.Is(genErr, reliability.ErrCircuitOpen) {
				return genErr
			}
			return &reliability.RetryableError{Err: genErr}
		}

		out = strings.TrimSpace(out)
		if n := utf8.RuneCountInString(out); n <= minSectionLength {
			slog.WarnContext(ctx, "section attempt too short",
				"section_id", id,
				"attempt", attempt,
				"length", n,
			)
			return &reliability.RetryableError{Err: fmt.Errorf("%w: section %s returned %d characters", plan.ErrContentTooShort, id, n)}
		}

		text = out
		return nil
	})

	switch {
	case err == nil:
		slog.DebugContext(ctx, "section generated",
			"section_id", id,
			"attempts", attempts,
			"length", len(text),
		)
		return plan.Succeeded(id, text, attempts), nil
	case ctx.Err() != nil:
		return plan.Failed(id, ctx.Err().Error(), attempts), ctx.Err()
	default:
		slog.WarnContext(ctx, "section degraded to fallback content",
			"section_id", id,
			"attempts", attempts,
			"error", err,
		)
		return plan.Degraded(id, fallbackText(id, info), err.Error(), attempts), nil
	}
}

// fallbackText builds deterministic section content from the idea's key facts.
func fallbackText(id plan.SectionID, info plan.KeyInformation) string {
	switch id {
	case plan.SectionExecutiveSummary:
		return info.Problem + "\n\n" + info.Concept
	case plan.SectionConcept:
		return info.Concept + "\n\n" + info.ValueProposition
	case plan.SectionCustomerProfile:
		return info.TargetMarket
	default:
		return unavailableSection + "\n\n" + info.Concept
	}
}
