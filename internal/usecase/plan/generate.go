package plan

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/specvital/planner/internal/adapter/ai/prompt"
	"github.com/specvital/planner/internal/adapter/ai/reliability"
	"github.com/specvital/planner/internal/domain/plan"
)

// IdeaResult is a generated business idea.
type IdeaResult struct {
	Idea    string   `json:"idea"`
	Sources []string `json:"sources"`
}

// GenerateUseCase serves the single-call generation endpoints.
type GenerateUseCase struct {
	config    Config
	generator plan.Generator
	oneShot   *reliability.Retryer
}

// NewGenerateUseCase creates a new GenerateUseCase.
func NewGenerateUseCase(generator plan.Generator, opts ...Option) *GenerateUseCase {
	cfg := newConfig(opts)
	return &GenerateUseCase{
		config:    cfg,
		generator: generator,
		oneShot:   reliability.NewRetryer(cfg.OneShotRetry),
	}
}

// Idea generates a business idea for the request.
func (uc *GenerateUseCase) Idea(ctx context.Context, req plan.GenerationRequest) (*IdeaResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := prompt.BuildIdeaPrompt(req)
	if err != nil {
		return nil, err
	}

	text, err := uc.generateOnce(ctx, p)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "business idea generated",
		"country", req.DisplayCountry(),
		"industry", req.DisplayIndustry(),
		"length", len(text),
	)

	return &IdeaResult{Idea: text, Sources: []string{}}, nil
}

// Section generates one section from a caller-supplied prompt. Relevancy is
// advisory: off-topic content is logged and still returned.
func (uc *GenerateUseCase) Section(ctx context.Context, rawID, userPrompt string) (string, error) {
	id, err := plan.ParseSectionID(rawID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(userPrompt) == "" {
		return "", fmt.Errorf("%w: prompt is required", plan.ErrInvalidInput)
	}

	timeout := uc.config.SectionRetry.AttemptTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	p := plan.Prompt{
		Config:  prompt.SectionConfig,
		Kind:    plan.PromptKindSection,
		Section: id,
		System:  prompt.SystemPrompt,
		User:    userPrompt,
	}

	startTime := time.Now()
	text, _, err := uc.generator.Generate(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%w: section %s: %w", ErrGenerationFailed, id, err)
	}

	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < minStandaloneSection {
		return "", fmt.Errorf("%w: section %s returned %d characters", plan.ErrContentTooShort, id, n)
	}

	if spec, ok := uc.config.Catalog.Spec(id); ok {
		if matched := countTerms(text, spec.Relevancy); matched < minRelevancyMatches {
			slog.WarnContext(ctx, "section content might be irrelevant",
				"section_id", id,
				"matched_keywords", matched,
			)
		}
	}

	slog.InfoContext(ctx, "section generated",
		"section_id", id,
		"length", len(text),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)

	return text, nil
}

// CompletePlan generates the whole plan in one call with canonical headings.
func (uc *GenerateUseCase) CompletePlan(ctx context.Context, idea string, req plan.GenerationRequest) (string, error) {
	if err := validateIdea(idea, req); err != nil {
		return "", err
	}

	p, err := prompt.BuildCompletePlanPrompt(idea, req, uc.config.Catalog)
	if err != nil {
		return "", err
	}

	text, err := uc.generateOnce(ctx, p)
	if err != nil {
		return "", err
	}

	if n := utf8.RuneCountInString(text); n < minCompletePlanLength {
		return "", fmt.Errorf("%w: complete plan returned %d characters", plan.ErrContentTooShort, n)
	}

	country := req.DisplayCountry()
	slog.InfoContext(ctx, "complete plan generated",
		"country", country,
		"country_mentions", countMentions(text, country),
		"length", len(text),
	)

	return text, nil
}

// DetailedPlan generates the whole plan in one call and prefixes a warning
// when the text focuses on France instead of the requested country.
func (uc *GenerateUseCase) DetailedPlan(ctx context.Context, idea string, req plan.GenerationRequest) (string, error) {
	if err := validateIdea(idea, req); err != nil {
		return "", err
	}

	country := req.DisplayCountry()
	if !strings.Contains(strings.ToLower(idea), strings.ToLower(country)) {
		slog.WarnContext(ctx, "business idea does not mention the target country",
			"country", country,
		)
	}

	p, err := prompt.BuildDetailedPlanPrompt(idea, req, uc.config.Catalog)
	if err != nil {
		return "", err
	}

	text, err := uc.generateOnce(ctx, p)
	if err != nil {
		return "", err
	}

	report := CheckCountryFocus(text, country)
	if report.Skipped {
		return text, nil
	}

	if report.CountryMentions < minCountryMentions {
		slog.WarnContext(ctx, "target country rarely mentioned in plan",
			"country", country,
			"country_mentions", report.CountryMentions,
		)
	}

	if report.Contaminated() {
		slog.WarnContext(ctx, "plan focuses on France instead of target country",
			"country", country,
			"score", report.Score,
			"references", report.Summary(),
		)
		return contaminationBanner(country, report) + text, nil
	}

	return text, nil
}

func (uc *GenerateUseCase) generateOnce(ctx context.Context, p plan.Prompt) (string, error) {
	var text string
	_, err := uc.oneShot.Do(ctx, func(ctx context.Context, _ int) error {
		out, _, err := uc.generator.Generate(ctx, p)
		if err != nil {
			return err
		}
		if out = strings.TrimSpace(out); out == "" {
			return &reliability.RetryableError{Err: fmt.Errorf("%w: empty response", plan.ErrContentTooShort)}
		}
		text = out
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrGenerationFailed, p.Kind, err)
	}
	return text, nil
}

func validateIdea(idea string, req plan.GenerationRequest) error {
	if strings.TrimSpace(idea) == "" {
		return fmt.Errorf("%w: businessIdea is required", plan.ErrInvalidInput)
	}
	return req.Validate()
}

func countTerms(text string, terms []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			n++
		}
	}
	return n
}
