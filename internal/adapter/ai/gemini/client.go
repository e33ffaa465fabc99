package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/specvital/planner/internal/adapter/ai/reliability"
	"github.com/specvital/planner/internal/domain/plan"
)

const defaultModel = "gemini-1.5-flash"

// Config holds configuration for the Gemini provider.
type Config struct {
	APIKey      string
	Model       string // default: gemini-1.5-flash
	RateLimiter *reliability.RateLimiter
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("gemini API key is required")
	}
	return nil
}

var _ plan.Generator = (*Provider)(nil)

// Provider implements plan.Generator using Google Gemini.
type Provider struct {
	client *genai.Client
	model  string

	circuit     *reliability.CircuitBreaker
	rateLimiter *reliability.RateLimiter
}

// NewProvider creates a new Gemini provider.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}

	limiter := config.RateLimiter
	if limiter == nil {
		limiter = reliability.GetGlobalRateLimiter()
	}

	return &Provider{
		client:      client,
		model:       model,
		circuit:     reliability.NewCircuitBreaker(reliability.DefaultGenerationCircuitConfig()),
		rateLimiter: limiter,
	}, nil
}

// Model returns the model name used for generation.
func (p *Provider) Model() string {
	return p.model
}

// Close releases resources held by the provider.
func (p *Provider) Close() error {
	// genai.Client doesn't require explicit close
	return nil
}

// Generate calls the Gemini API with rate limiting and circuit breaker.
func (p *Provider) Generate(ctx context.Context, prompt plan.Prompt) (string, *plan.TokenUsage, error) {
	if !p.circuit.Allow() {
		return "", nil, fmt.Errorf("%w: %w", plan.ErrAIUnavailable, reliability.ErrCircuitOpen)
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", nil, err
		}
		return "", nil, fmt.Errorf("%w: %v", plan.ErrRateLimited, err)
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt.User), buildContentConfig(prompt))
	if err != nil {
		p.circuit.RecordFailure()
		slog.WarnContext(ctx, "gemini API call failed",
			"model", p.model,
			"error", err,
		)
		if reliability.IsRetryable(err) {
			return "", nil, &reliability.RetryableError{Err: err}
		}
		return "", nil, err
	}

	text := result.Text()

	if len(result.Candidates) > 0 && result.Candidates[0] != nil {
		candidate := result.Candidates[0]
		truncated, err := finishOutcome(candidate, text)
		if truncated || err != nil {
			p.circuit.RecordSuccess()
		}
		if truncated {
			slog.WarnContext(ctx, "gemini output truncated due to token limit",
				"model", p.model,
				"max_output_tokens", prompt.Config.MaxOutputTokens,
				"usable", err == nil,
			)
		}
		if err != nil {
			if !truncated {
				slog.WarnContext(ctx, "gemini output blocked by safety filters",
					"model", p.model,
					"finish_reason", candidate.FinishReason,
					"finish_message", candidate.FinishMessage,
				)
			}
			return "", nil, err
		}
		if truncated {
			return text, usageFrom(result, p.model), nil
		}
	}

	if text == "" {
		p.circuit.RecordFailure()
		return "", nil, &reliability.RetryableError{Err: errors.New("empty response from Gemini")}
	}

	p.circuit.RecordSuccess()
	return text, usageFrom(result, p.model), nil
}

// finishOutcome classifies how a candidate finished. A MAX_TOKENS stop with
// text is truncated but usable; without text it is ErrOutputTruncated.
// Blocked output is a retryable ErrInvalidInput.
func finishOutcome(candidate *genai.Candidate, text string) (truncated bool, err error) {
	switch candidate.FinishReason {
	case genai.FinishReasonMaxTokens:
		if text == "" {
			return true, plan.ErrOutputTruncated
		}
		return true, nil
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist, genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
		return false, &reliability.RetryableError{Err: fmt.Errorf("%w: content blocked (%s)", plan.ErrInvalidInput, candidate.FinishReason)}
	default:
		return false, nil
	}
}

func buildContentConfig(prompt plan.Prompt) *genai.GenerateContentConfig {
	cfg := prompt.Config
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		MaxOutputTokens: cfg.MaxOutputTokens,
	}
	if cfg.TopP > 0 {
		config.TopP = genai.Ptr(cfg.TopP)
	}
	if cfg.TopK > 0 {
		config.TopK = genai.Ptr(cfg.TopK)
	}
	if prompt.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		}
	}
	if threshold, ok := harmThresholds[cfg.HateSpeechThreshold]; ok {
		config.SafetySettings = []*genai.SafetySetting{
			{
				Category:  genai.HarmCategoryHateSpeech,
				Threshold: threshold,
			},
		}
	}
	return config
}

var harmThresholds = map[plan.HarmThreshold]genai.HarmBlockThreshold{
	plan.HarmBlockMediumAndAbove: genai.HarmBlockThresholdBlockMediumAndAbove,
	plan.HarmBlockOnlyHigh:       genai.HarmBlockThresholdBlockOnlyHigh,
	plan.HarmBlockNone:           genai.HarmBlockThresholdBlockNone,
}

func usageFrom(result *genai.GenerateContentResponse, model string) *plan.TokenUsage {
	if result.UsageMetadata == nil {
		return nil
	}
	return &plan.TokenUsage{
		CandidatesTokens: result.UsageMetadata.CandidatesTokenCount,
		Model:            model,
		PromptTokens:     result.UsageMetadata.PromptTokenCount,
		TotalTokens:      result.UsageMetadata.TotalTokenCount,
	}
}
