// Package ratelimit counts requests per key in a sliding window.
package ratelimit

import (
	"context"
	"time"
)

// DefaultWindow is the sliding window length used by both admin policies.
const DefaultWindow = 15 * time.Minute

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits or rejects a request identified by key.
// Rejected requests are not counted against the window.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Policy bounds requests per key.
type Policy struct {
	Name   string
	Max    int
	Window time.Duration
}
