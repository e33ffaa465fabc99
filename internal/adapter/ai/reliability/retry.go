package reliability

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// RetryConfig holds configuration for retry logic.
type RetryConfig struct {
	AttemptTimeout time.Duration // Wall-clock budget per attempt (0: none)
	InitialBackoff time.Duration
	JitterFactor   float64 // Random jitter factor 0-1 (0: none)
	MaxAttempts    int
	MaxBackoff     time.Duration
	Multiplier     float64 // Backoff multiplier (default: 2.0, 1.0 for a fixed delay)
}

// DefaultSectionRetryConfig returns the per-section generation policy:
// 3 attempts, fixed 1s delay, 90s per attempt.
func DefaultSectionRetryConfig() RetryConfig {
	return RetryConfig{
		AttemptTimeout: 90 * time.Second,
		InitialBackoff: 1 * time.Second,
		MaxAttempts:    3,
		MaxBackoff:     1 * time.Second,
		Multiplier:     1.0,
	}
}

// DefaultOneShotRetryConfig returns the policy for single long generations
// (idea, whole plan).
func DefaultOneShotRetryConfig() RetryConfig {
	return RetryConfig{
		AttemptTimeout: 120 * time.Second,
		InitialBackoff: 2 * time.Second,
		JitterFactor:   0.1,
		MaxAttempts:    2,
		MaxBackoff:     10 * time.Second,
		Multiplier:     2.0,
	}
}

// RetryableError indicates an error that should trigger retry.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// ErrAttemptTimeout is reported when one attempt exceeds its budget while
// the caller's context is still alive.
var ErrAttemptTimeout = errors.New("attempt timeout")

// IsRetryable checks if an error should trigger a retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return true
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, ErrCircuitOpen) {
		return false
	}

	errMsg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"quota exceeded",
		"resource exhausted",
		"too many requests",
		"service unavailable",
		"internal server error",
		"timeout",
		"connection reset",
		"connection refused",
		"temporary failure",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

// IsRetryableStatusCode checks if an HTTP status code indicates retryable error.
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusBadGateway,
		http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

// Retryer performs operations with retry logic.
type Retryer struct {
	config RetryConfig
}

// NewRetryer creates a new retryer with the given configuration.
func NewRetryer(config RetryConfig) *Retryer {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}
	return &Retryer{config: config}
}

// Config returns the effective configuration.
func (r *Retryer) Config() RetryConfig {
	return r.config
}

// Do runs operation until it succeeds, returns a non-retryable error, or the
// attempts are used up. Each attempt gets its own context bounded by
// AttemptTimeout; an attempt that runs out of time while ctx is still alive
// counts as retryable. Returns the number of attempts made.
func (r *Retryer) Do(ctx context.Context, operation func(ctx context.Context, attempt int) error) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := r.runAttempt(ctx, attempt, operation)
		if err == nil {
			return attempt, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return attempt, ctx.Err()
		}

		if !IsRetryable(err) {
			return attempt, err
		}

		if attempt == r.config.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(r.calculateBackoff(attempt)):
		}
	}

	return r.config.MaxAttempts, lastErr
}

func (r *Retryer) runAttempt(ctx context.Context, attempt int, operation func(ctx context.Context, attempt int) error) error {
	if r.config.AttemptTimeout <= 0 {
		return operation(ctx, attempt)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, r.config.AttemptTimeout)
	defer cancel()

	err := operation(attemptCtx, attempt)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &RetryableError{Err: fmt.Errorf("%w after %s: %v", ErrAttemptTimeout, r.config.AttemptTimeout, err)}
	}
	return err
}

// calculateBackoff calculates the backoff duration with exponential increase and jitter.
func (r *Retryer) calculateBackoff(attempt int) time.Duration {
	backoff := float64(r.config.InitialBackoff) * math.Pow(r.config.Multiplier, float64(attempt-1))

	if backoff > float64(r.config.MaxBackoff) {
		backoff = float64(r.config.MaxBackoff)
	}

	if r.config.JitterFactor > 0 {
		jitter := (rand.Float64()*2 - 1) * r.config.JitterFactor
		backoff *= (1 + jitter)
	}

	return time.Duration(backoff)
}
