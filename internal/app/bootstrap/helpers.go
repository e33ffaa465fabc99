// Package bootstrap provides application startup utilities for planner services.
package bootstrap

import (
	"fmt"
	"net/url"

	planqueue "github.com/specvital/planner/internal/adapter/queue/plan"
	infraqueue "github.com/specvital/planner/internal/infra/queue"
)

const defaultConcurrency = 2

// maskURL returns a sanitized URL for logging (hides credentials).
func maskURL(rawURL string) string {
	if rawURL == "" {
		return "[none]"
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "[invalid-url]"
	}

	host := parsed.Host
	if len(host) > 30 {
		host = host[:30] + "..."
	}

	userPart := ""
	if parsed.User != nil {
		userPart = parsed.User.Username() + ":****@"
	}

	return fmt.Sprintf("%s://%s%s/...", parsed.Scheme, userPart, host)
}

func planQueues(concurrency int) []infraqueue.QueueAllocation {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return []infraqueue.QueueAllocation{
		{Name: planqueue.QueueDefault, MaxWorkers: concurrency},
	}
}
