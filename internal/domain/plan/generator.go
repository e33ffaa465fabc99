package plan

import "context"

// HarmThreshold is the safety filter level requested from the generator.
type HarmThreshold string

const (
	HarmBlockMediumAndAbove HarmThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	HarmBlockOnlyHigh       HarmThreshold = "BLOCK_ONLY_HIGH"
	HarmBlockNone           HarmThreshold = "BLOCK_NONE"
)

// GenerationConfig tunes one generation call. Zero TopP/TopK mean provider default.
type GenerationConfig struct {
	HateSpeechThreshold HarmThreshold
	MaxOutputTokens     int32
	Temperature         float32
	TopK                float32
	TopP                float32
}

// PromptKind names what a prompt asks the generator to produce.
type PromptKind string

const (
	PromptKindIdea         PromptKind = "idea"
	PromptKindSection      PromptKind = "section"
	PromptKindCompletePlan PromptKind = "complete-plan"
)

// Prompt is a complete generation request.
type Prompt struct {
	Config  GenerationConfig
	Kind    PromptKind
	Section SectionID // set for PromptKindSection
	System  string
	User    string
}

// Generator is the external text-generation service.
type Generator interface {
	// Generate returns best-effort markdown text for the prompt.
	Generate(ctx context.Context, prompt Prompt) (string, *TokenUsage, error)

	// Close releases resources held by the generator.
	Close() error
}
