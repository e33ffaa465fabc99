package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/specvital/planner/internal/adapter/ai/reliability"
	"github.com/specvital/planner/internal/domain/plan"
)

const defaultModel = "gpt-4o-mini"

// Config holds configuration for an OpenAI-compatible provider.
type Config struct {
	APIKey      string
	BaseURL     string // optional, for OpenAI-compatible gateways
	Model       string // default: gpt-4o-mini
	RateLimiter *reliability.RateLimiter
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("openai API key is required")
	}
	return nil
}

var _ plan.Generator = (*Provider)(nil)

// Provider implements plan.Generator with chat completions.
type Provider struct {
	client openaisdk.Client
	model  string

	circuit     *reliability.CircuitBreaker
	rateLimiter *reliability.RateLimiter
}

func NewProvider(config Config) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		// retries are handled by the caller's retry policy
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
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
		client:      openaisdk.NewClient(opts...),
		model:       model,
		circuit:     reliability.NewCircuitBreaker(reliability.DefaultGenerationCircuitConfig()),
		rateLimiter: limiter,
	}, nil
}

func (p *Provider) Model() string {
	return p.model
}

func (p *Provider) Close() error {
	return nil
}

// Generate sends the prompt as a system plus user chat completion.
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

	resp, err := p.client.Chat.Completions.New(ctx, buildParams(p.model, prompt))
	if err != nil {
		p.circuit.RecordFailure()
		slog.WarnContext(ctx, "openai API call failed",
			"model", p.model,
			"error", err,
		)
		var apiErr *openaisdk.Error
		if errors.As(err, &apiErr) && reliability.IsRetryableStatusCode(apiErr.StatusCode) {
			return "", nil, &reliability.RetryableError{Err: err}
		}
		if reliability.IsRetryable(err) {
			return "", nil, &reliability.RetryableError{Err: err}
		}
		return "", nil, err
	}

	if len(resp.Choices) == 0 {
		p.circuit.RecordFailure()
		return "", nil, &reliability.RetryableError{Err: errors.New("openai: empty choices")}
	}

	choice := resp.Choices[0]
	switch choice.FinishReason {
	case "content_filter":
		p.circuit.RecordSuccess()
		slog.WarnContext(ctx, "openai output blocked by content filter", "model", p.model)
		return "", nil, &reliability.RetryableError{Err: fmt.Errorf("%w: content blocked", plan.ErrInvalidInput)}
	case "length":
		slog.WarnContext(ctx, "openai output truncated due to token limit",
			"model", p.model,
			"max_output_tokens", prompt.Config.MaxOutputTokens,
		)
	}

	text := choice.Message.Content
	if text == "" {
		p.circuit.RecordFailure()
		return "", nil, &reliability.RetryableError{Err: errors.New("empty response from OpenAI")}
	}

	p.circuit.RecordSuccess()
	return text, &plan.TokenUsage{
		CandidatesTokens: int32(resp.Usage.CompletionTokens),
		Model:            p.model,
		PromptTokens:     int32(resp.Usage.PromptTokens),
		TotalTokens:      int32(resp.Usage.TotalTokens),
	}, nil
}

func buildParams(model string, prompt plan.Prompt) openaisdk.ChatCompletionNewParams {
	var msgs []openaisdk.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		msgs = append(msgs, openaisdk.SystemMessage(prompt.System))
	}
	msgs = append(msgs, openaisdk.UserMessage(prompt.User))

	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(model),
		Messages:    msgs,
		Temperature: openaisdk.Float(float64(prompt.Config.Temperature)),
	}
	if prompt.Config.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(int64(prompt.Config.MaxOutputTokens))
	}
	if prompt.Config.TopP > 0 {
		params.TopP = openaisdk.Float(float64(prompt.Config.TopP))
	}
	return params
}
