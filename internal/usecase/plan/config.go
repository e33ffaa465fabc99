package plan

import (
	"time"

	"github.com/specvital/planner/internal/adapter/ai/reliability"
	"github.com/specvital/planner/internal/domain/plan"
)

const (
	minSectionLength      = 100  // assembled section, trimmed
	minStandaloneSection  = 200  // /generate-section response
	minCompletePlanLength = 2000 // one-shot plan
	minRelevancyMatches   = 2
	minCountryMentions    = 10
	contaminationLimit    = 3
)

// Config holds configuration for the plan use cases.
type Config struct {
	Catalog      *plan.Catalog
	Now          func() time.Time
	OneShotRetry reliability.RetryConfig // idea and whole-plan calls
	SectionRetry reliability.RetryConfig // one call per assembled section
}

// Option is a functional option for configuring the plan use cases.
type Option func(*Config)

// WithCatalog replaces the embedded section catalog.
func WithCatalog(c *plan.Catalog) Option {
	return func(cfg *Config) {
		if c != nil {
			cfg.Catalog = c
		}
	}
}

// WithSectionRetry sets the per-section attempt policy.
func WithSectionRetry(rc reliability.RetryConfig) Option {
	return func(cfg *Config) {
		cfg.SectionRetry = rc
	}
}

// WithOneShotRetry sets the policy for idea and whole-plan generation.
func WithOneShotRetry(rc reliability.RetryConfig) Option {
	return func(cfg *Config) {
		cfg.OneShotRetry = rc
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(cfg *Config) {
		if now != nil {
			cfg.Now = now
		}
	}
}

func newConfig(opts []Option) Config {
	cfg := Config{
		Catalog:      plan.DefaultCatalog(),
		Now:          time.Now,
		OneShotRetry: reliability.DefaultOneShotRetryConfig(),
		SectionRetry: reliability.DefaultSectionRetryConfig(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
