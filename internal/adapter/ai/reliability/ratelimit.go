package reliability

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

const (
	defaultRequestsPerMinute = 60
	defaultBurst             = 5
)

// RateLimiter is a token bucket shared by all generation calls in a process.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows requestsPerMinute with the given burst.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst),
	}
}

// Wait blocks until a request may proceed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// SetRequestsPerMinute adjusts the sustained rate.
func (r *RateLimiter) SetRequestsPerMinute(requestsPerMinute int) {
	if requestsPerMinute <= 0 {
		return
	}
	r.limiter.SetLimit(rate.Limit(float64(requestsPerMinute) / 60.0))
}

var (
	globalRateLimiter     *RateLimiter
	globalRateLimiterOnce sync.Once
)

// GetGlobalRateLimiter returns the process-wide limiter.
func GetGlobalRateLimiter() *RateLimiter {
	globalRateLimiterOnce.Do(func() {
		globalRateLimiter = NewRateLimiter(defaultRequestsPerMinute, defaultBurst)
	})
	return globalRateLimiter
}
