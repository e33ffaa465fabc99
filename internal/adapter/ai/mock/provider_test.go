package mock

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/specvital/planner/internal/adapter/ai/prompt"
	"github.com/specvital/planner/internal/domain/plan"
)

func TestProvider_Generate(t *testing.T) {
	provider := NewProvider()
	ctx := context.Background()
	req := plan.GenerationRequest{Industry: "retail", Country: "ghana", Budget: plan.BudgetLow}

	t.Run("idea contains recognizable labels", func(t *testing.T) {
		p, err := prompt.BuildIdeaPrompt(req)
		if err != nil {
			t.Fatalf("BuildIdeaPrompt failed: %v", err)
		}

		text, _, err := provider.Generate(ctx, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info := plan.ExtractKeyInformation(text)
		if info.Problem == plan.PlaceholderProblem || info.Concept == plan.PlaceholderConcept {
			t.Errorf("expected labelled idea, got %+v", info)
		}
		if !strings.Contains(text, "Ghana") {
			t.Error("expected country in idea")
		}
	})

	t.Run("every section body is long enough and mentions the country", func(t *testing.T) {
		sc := prompt.NewSectionContext(req, plan.KeyInformation{})
		for _, id := range plan.Sections() {
			p, err := prompt.BuildSectionPrompt(id, sc)
			if err != nil {
				t.Fatalf("BuildSectionPrompt(%s) failed: %v", id, err)
			}

			text, _, err := provider.Generate(ctx, p)
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", id, err)
			}
			if len(text) <= 100 {
				t.Errorf("section %s too short: %d", id, len(text))
			}
			if !strings.Contains(text, "Ghana") {
				t.Errorf("section %s does not mention country", id)
			}
		}
	})

	t.Run("complete plan has all canonical headings", func(t *testing.T) {
		p, err := prompt.BuildCompletePlanPrompt("idea", req, plan.DefaultCatalog())
		if err != nil {
			t.Fatalf("BuildCompletePlanPrompt failed: %v", err)
		}

		text, _, err := provider.Generate(ctx, p)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, spec := range plan.DefaultCatalog().Specs() {
			if !strings.Contains(text, "\n## "+spec.Title+"\n") {
				t.Errorf("missing heading %q", spec.Title)
			}
		}
	})

	t.Run("unknown prompt kind is rejected", func(t *testing.T) {
		_, _, err := provider.Generate(ctx, plan.Prompt{User: "x"})
		if !errors.Is(err, plan.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("cancelled context is honoured", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := provider.Generate(cctx, plan.Prompt{Kind: plan.PromptKindIdea})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
