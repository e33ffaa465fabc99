package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/specvital/planner/internal/domain/plan"
)

//go:embed templates/*.md
var templateFS embed.FS

//go:embed templates/system.md
var SystemPrompt string

var templates = template.Must(template.New("prompts").ParseFS(templateFS, "templates/*.md"))

// Generation settings per call kind.
var (
	IdeaConfig = plan.GenerationConfig{
		HateSpeechThreshold: plan.HarmBlockMediumAndAbove,
		MaxOutputTokens:     2048,
		Temperature:         0.8,
	}
	SectionConfig = plan.GenerationConfig{
		HateSpeechThreshold: plan.HarmBlockMediumAndAbove,
		MaxOutputTokens:     4096,
		Temperature:         0.7,
		TopK:                40,
		TopP:                0.95,
	}
	CompletePlanConfig = plan.GenerationConfig{
		HateSpeechThreshold: plan.HarmBlockMediumAndAbove,
		MaxOutputTokens:     32768,
		Temperature:         0.7,
	}
)

// SectionContext is the shared input for per-section prompts.
type SectionContext struct {
	Budget   string
	Country  string
	Industry string
	Info     plan.KeyInformation
}

// NewSectionContext derives prompt context from a request and its extracted facts.
func NewSectionContext(req plan.GenerationRequest, info plan.KeyInformation) SectionContext {
	return SectionContext{
		Budget:   req.Budget.Describe(),
		Country:  req.DisplayCountry(),
		Industry: req.DisplayIndustry(),
		Info:     info,
	}
}

type ideaData struct {
	Budget   string
	Country  string
	Criteria []string
	Industry string
}

type wholePlanData struct {
	Budget   string
	Country  string
	Idea     string
	Industry string
	IsFrance bool
	Titles   []string
}

// BuildIdeaPrompt builds the prompt that produces the initial business idea.
func BuildIdeaPrompt(req plan.GenerationRequest) (plan.Prompt, error) {
	criteria := make([]string, 0, len(req.Criteria))
	for _, c := range req.Criteria {
		if c = strings.TrimSpace(c); c != "" {
			criteria = append(criteria, c)
		}
	}

	user, err := render("idea.md", ideaData{
		Budget:   req.Budget.Describe(),
		Country:  req.DisplayCountry(),
		Criteria: criteria,
		Industry: req.DisplayIndustry(),
	})
	if err != nil {
		return plan.Prompt{}, err
	}
	return plan.Prompt{Kind: plan.PromptKindIdea, System: SystemPrompt, User: user, Config: IdeaConfig}, nil
}

// BuildSectionPrompt builds the generation prompt for one plan section.
func BuildSectionPrompt(id plan.SectionID, sc SectionContext) (plan.Prompt, error) {
	if !id.IsValid() {
		return plan.Prompt{}, fmt.Errorf("%w: unknown section id: %s", plan.ErrInvalidInput, id)
	}

	user, err := render("section_"+string(id)+".md", sc)
	if err != nil {
		return plan.Prompt{}, err
	}
	return plan.Prompt{Kind: plan.PromptKindSection, Section: id, System: SystemPrompt, User: user, Config: SectionConfig}, nil
}

// BuildCompletePlanPrompt builds the one-shot prompt for a whole plan with
// the canonical section headings.
func BuildCompletePlanPrompt(idea string, req plan.GenerationRequest, catalog *plan.Catalog) (plan.Prompt, error) {
	user, err := render("complete_plan.md", newWholePlanData(idea, req, catalog))
	if err != nil {
		return plan.Prompt{}, err
	}
	return plan.Prompt{Kind: plan.PromptKindCompletePlan, System: SystemPrompt, User: user, Config: CompletePlanConfig}, nil
}

// BuildDetailedPlanPrompt builds the one-shot prompt used by the quality-checked
// plan endpoint. It insists on the target country more strongly.
func BuildDetailedPlanPrompt(idea string, req plan.GenerationRequest, catalog *plan.Catalog) (plan.Prompt, error) {
	user, err := render("detailed_plan.md", newWholePlanData(idea, req, catalog))
	if err != nil {
		return plan.Prompt{}, err
	}
	return plan.Prompt{Kind: plan.PromptKindCompletePlan, System: SystemPrompt, User: user, Config: CompletePlanConfig}, nil
}

func newWholePlanData(idea string, req plan.GenerationRequest, catalog *plan.Catalog) wholePlanData {
	specs := catalog.Specs()
	titles := make([]string, len(specs))
	for i, s := range specs {
		titles[i] = s.Title
	}
	return wholePlanData{
		Budget:   req.Budget.Describe(),
		Country:  req.DisplayCountry(),
		Idea:     strings.TrimSpace(idea),
		Industry: req.DisplayIndustry(),
		IsFrance: strings.EqualFold(strings.TrimSpace(req.Country), "france"),
		Titles:   titles,
	}
}

func render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
