package plan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/specvital/planner/internal/domain/plan"
)

func fixedTextGenerator(text string) *mockGenerator {
	return &mockGenerator{
		generateFn: func(context.Context, plan.Prompt) (string, *plan.TokenUsage, error) {
			return text, nil, nil
		},
	}
}

func TestGenerateUseCase_Idea(t *testing.T) {
	t.Run("should return trimmed idea with empty sources", func(t *testing.T) {
		gen := &mockGenerator{
			generateFn: func(_ context.Context, p plan.Prompt) (string, *plan.TokenUsage, error) {
				if p.Kind != plan.PromptKindIdea {
					t.Errorf("prompt kind = %s, want idea", p.Kind)
				}
				return "  " + kenyaIdea + "\n", nil, nil
			},
		}
		uc := NewGenerateUseCase(gen, WithOneShotRetry(fastRetry()))

		got, err := uc.Idea(context.Background(), kenyaRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Idea != kenyaIdea {
			t.Errorf("idea not trimmed: %q", got.Idea)
		}
		if got.Sources == nil || len(got.Sources) != 0 {
			t.Errorf("expected empty non-nil sources, got %v", got.Sources)
		}
	})

	t.Run("should wrap generator failures", func(t *testing.T) {
		gen := &mockGenerator{
			generateFn: func(context.Context, plan.Prompt) (string, *plan.TokenUsage, error) {
				return "", nil, errors.New("permission denied")
			},
		}
		uc := NewGenerateUseCase(gen, WithOneShotRetry(fastRetry()))

		_, err := uc.Idea(context.Background(), kenyaRequest())

		if !errors.Is(err, ErrGenerationFailed) {
			t.Fatalf("expected ErrGenerationFailed, got %v", err)
		}
		if gen.calls.Load() != 1 {
			t.Errorf("non-retryable error should not be retried, got %d calls", gen.calls.Load())
		}
	})
}

func TestGenerateUseCase_Section(t *testing.T) {
	longMarketing := "Our marketing strategy focuses on acquisition channels in Kenya. " + strings.Repeat("Promotion detail. ", 10)

	tests := []struct {
		name    string
		id      string
		prompt  string
		output  string
		wantErr error
	}{
		{name: "should reject unknown section", id: "appendix", prompt: "write", wantErr: plan.ErrInvalidInput},
		{name: "should reject empty prompt", id: "marketing", prompt: "  ", wantErr: plan.ErrInvalidInput},
		{name: "should reject short content", id: "marketing", prompt: "write", output: "short", wantErr: plan.ErrContentTooShort},
		{name: "should return relevant content", id: "marketing", prompt: "write", output: longMarketing},
		{name: "should return off-topic content with a warning only", id: "toolkit", prompt: "write", output: strings.Repeat("Unrelated words here. ", 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewGenerateUseCase(fixedTextGenerator(tt.output), WithSectionRetry(fastRetry()))

			got, err := uc.Section(context.Background(), tt.id, tt.prompt)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != strings.TrimSpace(tt.output) {
				t.Errorf("unexpected content %q", got)
			}
		})
	}
}

func TestGenerateUseCase_CompletePlan(t *testing.T) {
	t.Run("should reject short plans", func(t *testing.T) {
		uc := NewGenerateUseCase(fixedTextGenerator("## Executive Summary\n\nToo short."), WithOneShotRetry(fastRetry()))

		_, err := uc.CompletePlan(context.Background(), kenyaIdea, kenyaRequest())

		if !errors.Is(err, plan.ErrContentTooShort) {
			t.Fatalf("expected ErrContentTooShort, got %v", err)
		}
	})

	t.Run("should return plans of sufficient length", func(t *testing.T) {
		doc := fixedPlanDocument()
		uc := NewGenerateUseCase(fixedTextGenerator(doc), WithOneShotRetry(fastRetry()))

		got, err := uc.CompletePlan(context.Background(), kenyaIdea, kenyaRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != strings.TrimSpace(doc) {
			t.Error("expected plan to be returned unchanged")
		}
	})

	t.Run("should require an idea", func(t *testing.T) {
		uc := NewGenerateUseCase(&mockGenerator{})

		_, err := uc.CompletePlan(context.Background(), " ", kenyaRequest())

		if !errors.Is(err, plan.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestGenerateUseCase_DetailedPlan(t *testing.T) {
	t.Run("should prefix a banner when the plan focuses on France", func(t *testing.T) {
		text := "Launch in Kenya. France is big. France again. French rules. Paris office. Paris shop."
		uc := NewGenerateUseCase(fixedTextGenerator(text), WithOneShotRetry(fastRetry()))

		got, err := uc.DetailedPlan(context.Background(), kenyaIdea, kenyaRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(got, "# QUALITY ISSUE DETECTED\n\n") {
			t.Fatalf("expected banner prefix, got %q", got[:40])
		}
		if !strings.Contains(got, "instead of Kenya.") {
			t.Error("expected banner to name the target country")
		}
		if !strings.Contains(got, "**Detected French references:** France (2), French (1), Paris (2)") {
			t.Errorf("unexpected references in %q", got)
		}
		if !strings.HasSuffix(got, text) {
			t.Error("expected original plan after the banner")
		}
	})

	t.Run("should leave plans with few references untouched", func(t *testing.T) {
		text := "Kenya plan. A partner from France."
		uc := NewGenerateUseCase(fixedTextGenerator(text), WithOneShotRetry(fastRetry()))

		got, err := uc.DetailedPlan(context.Background(), kenyaIdea, kenyaRequest())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != text {
			t.Errorf("expected unchanged plan, got %q", got)
		}
	})

	t.Run("should skip the check for France", func(t *testing.T) {
		text := "Paris, Lyon, Marseille, Bordeaux and Nice are all in France."
		uc := NewGenerateUseCase(fixedTextGenerator(text), WithOneShotRetry(fastRetry()))
		req := kenyaRequest()
		req.Country = "france"

		got, err := uc.DetailedPlan(context.Background(), "A bakery in France", req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != text {
			t.Errorf("expected unchanged plan, got %q", got)
		}
	})
}

func TestCheckCountryFocus(t *testing.T) {
	t.Run("should match whole words only", func(t *testing.T) {
		report := CheckCountryFocus("A nicely done EUROPEAN plan for Kenya and kenya.", "Kenya")

		if report.Score != 0 {
			t.Errorf("expected no references, got %s", report.Summary())
		}
		if report.CountryMentions != 2 {
			t.Errorf("country mentions = %d, want 2", report.CountryMentions)
		}
	})

	t.Run("should count euro signs and currency codes", func(t *testing.T) {
		report := CheckCountryFocus("Costs 10€, 20 € or 30 EUR, paid in euros.", "Kenya")

		if report.Score != 4 {
			t.Errorf("score = %d, want 4 (%s)", report.Score, report.Summary())
		}
		if !report.Contaminated() {
			t.Error("expected a score above 3 to count as contaminated")
		}
	})
}
