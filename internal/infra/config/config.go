package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultPort               = "8080"
	defaultPlanWorkers        = 2
	defaultRateLimitRPM       = 60
	defaultRecoveryAbandon    = 24 * time.Hour
	defaultRecoverySchedule   = "@every 10m"
	defaultRecoveryStale      = 45 * time.Minute
	defaultSectionMaxAttempts = 3
	defaultSectionRetryDelay  = 1 * time.Second
	defaultSectionTimeout     = 90 * time.Second
)

type Config struct {
	AI              AIConfig
	DatabaseURL     string
	InProcessWorker bool
	PlanWorkers     int
	Port            string
	Recovery        RecoveryConfig
	RunMigrations   bool
	Section         SectionConfig
}

type AIConfig struct {
	GeminiAPIKey  string
	GeminiModel   string
	MockMode      bool
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	Provider      string
	RateLimitRPM  int
}

// HasCredentials reports whether the selected provider can be built.
func (c AIConfig) HasCredentials() bool {
	if c.MockMode {
		return true
	}
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	default:
		return c.GeminiAPIKey != ""
	}
}

// SectionConfig is the per-section generation policy.
type SectionConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

// RecoveryConfig drives the stale plan scheduler.
type RecoveryConfig struct {
	AbandonAfter time.Duration
	Schedule     string
	StaleAfter   time.Duration
}

// Load reads .env when present, then the process environment. Only values
// that are malformed fail; a missing AI key is reported by HasCredentials.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	provider := strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER")))
	if provider == "" {
		provider = ProviderGemini
	}
	if provider != ProviderGemini && provider != ProviderOpenAI {
		return nil, fmt.Errorf("AI_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, provider)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	return &Config{
		AI: AIConfig{
			GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
			GeminiModel:   os.Getenv("GEMINI_MODEL"),
			MockMode:      getEnvBool("MOCK_MODE", false),
			OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
			OpenAIModel:   os.Getenv("OPENAI_MODEL"),
			Provider:      provider,
			RateLimitRPM:  getEnvInt("RATE_LIMIT_RPM", defaultRateLimitRPM),
		},
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		InProcessWorker: getEnvBool("IN_PROCESS_WORKER", false),
		PlanWorkers:     getEnvInt("PLAN_WORKERS", defaultPlanWorkers),
		Port:            port,
		Recovery: RecoveryConfig{
			AbandonAfter: getEnvDuration("RECOVERY_ABANDON_AFTER", defaultRecoveryAbandon),
			Schedule:     getEnvString("RECOVERY_SCHEDULE", defaultRecoverySchedule),
			StaleAfter:   getEnvDuration("RECOVERY_STALE_AFTER", defaultRecoveryStale),
		},
		RunMigrations:   getEnvBool("RUN_MIGRATIONS", false),
		Section: SectionConfig{
			MaxAttempts: getEnvInt("SECTION_MAX_ATTEMPTS", defaultSectionMaxAttempts),
			RetryDelay:  getEnvDuration("SECTION_RETRY_DELAY", defaultSectionRetryDelay),
			Timeout:     getEnvDuration("SECTION_TIMEOUT", defaultSectionTimeout),
		},
	}, nil
}

// RequireDatabase fails when DATABASE_URL is not set.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// getEnvInt returns a positive integer from the environment or def.
func getEnvString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		slog.Warn("ignoring invalid integer env var", "key", key, "value", raw)
		return def
	}
	return v
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		slog.Warn("ignoring invalid duration env var", "key", key, "value", raw)
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("ignoring invalid boolean env var", "key", key, "value", raw)
		return def
	}
	return v
}
