package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/specvital/planner/internal/adapter/ai/gemini"
	"github.com/specvital/planner/internal/adapter/ai/mock"
	"github.com/specvital/planner/internal/adapter/ai/openai"
	"github.com/specvital/planner/internal/adapter/ai/reliability"
	"github.com/specvital/planner/internal/adapter/repository/memory"
	"github.com/specvital/planner/internal/adapter/repository/postgres"
	"github.com/specvital/planner/internal/domain/plan"
	"github.com/specvital/planner/internal/infra/config"
	planuc "github.com/specvital/planner/internal/usecase/plan"
)

const rateLimitBurst = 5

// ContainerConfig holds common configuration for dependency injection containers.
type ContainerConfig struct {
	AI      config.AIConfig
	Pool    *pgxpool.Pool // optional for the API: plans are kept in memory without it
	Section config.SectionConfig
}

// ValidateAPI checks the API configuration. A missing provider key is not an
// error: generation routes report it per request.
func (c ContainerConfig) ValidateAPI() error {
	if c.AI.Provider != "" && c.AI.Provider != config.ProviderGemini && c.AI.Provider != config.ProviderOpenAI {
		return fmt.Errorf("unknown AI provider %q", c.AI.Provider)
	}
	return nil
}

// ValidateWorker checks that the queue worker can run.
func (c ContainerConfig) ValidateWorker() error {
	if err := c.ValidateAPI(); err != nil {
		return err
	}
	if c.Pool == nil {
		return fmt.Errorf("pool is required")
	}
	if !c.AI.HasCredentials() {
		return fmt.Errorf("%s API key is required (set MOCK_MODE=true to skip)", providerName(c.AI))
	}
	return nil
}

// NewGenerator builds the configured generation provider.
func NewGenerator(ctx context.Context, cfg config.AIConfig) (plan.Generator, error) {
	if cfg.MockMode {
		slog.Info("mock mode enabled, using mock AI provider")
		return mock.NewProvider(), nil
	}

	limiter := reliability.NewRateLimiter(cfg.RateLimitRPM, rateLimitBurst)

	switch cfg.Provider {
	case config.ProviderOpenAI:
		provider, err := openai.NewProvider(openai.Config{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			RateLimiter: limiter,
		})
		if err != nil {
			return nil, fmt.Errorf("create openai provider: %w", err)
		}
		return provider, nil
	default:
		provider, err := gemini.NewProvider(ctx, gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			RateLimiter: limiter,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini provider: %w", err)
		}
		return provider, nil
	}
}

// SectionRetryConfig turns the configured section policy into a fixed-delay retry.
func SectionRetryConfig(sc config.SectionConfig) reliability.RetryConfig {
	rc := reliability.DefaultSectionRetryConfig()
	if sc.Timeout > 0 {
		rc.AttemptTimeout = sc.Timeout
	}
	if sc.MaxAttempts > 0 {
		rc.MaxAttempts = sc.MaxAttempts
	}
	if sc.RetryDelay > 0 {
		rc.InitialBackoff = sc.RetryDelay
		rc.MaxBackoff = sc.RetryDelay
	}
	return rc
}

func newRepository(pool *pgxpool.Pool) plan.Repository {
	if pool == nil {
		slog.Warn("no database configured, plans are kept in memory")
		return memory.NewPlanRepository()
	}
	return postgres.NewPlanRepository(pool)
}

func useCaseOptions(cfg ContainerConfig) []planuc.Option {
	return []planuc.Option{planuc.WithSectionRetry(SectionRetryConfig(cfg.Section))}
}

func providerName(cfg config.AIConfig) string {
	if cfg.Provider == "" {
		return config.ProviderGemini
	}
	return cfg.Provider
}
