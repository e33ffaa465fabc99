package plan

import "errors"

var (
	ErrAIUnavailable   = errors.New("AI service unavailable")
	ErrContentTooShort = errors.New("generated content too short")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotConfigured   = errors.New("generation provider not configured")
	ErrOutputTruncated = errors.New("AI output truncated due to token limit")
	ErrPlanNotFound    = errors.New("plan not found")
	ErrRateLimited     = errors.New("rate limit exceeded")
)
