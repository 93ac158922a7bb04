package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/dtroode/folio-server/internal/model"
)

const sweepEvery = 1024

var _ Limiter = (*Memory)(nil)

// Memory is a single-process sliding-window log.
type Memory struct {
	mu     sync.Mutex
	policy Policy
	now    model.Clock
	hits   map[string][]time.Time
	calls  int
}

// NewMemory creates an in-process limiter for policy.
func NewMemory(policy Policy, clock model.Clock) *Memory {
	if clock == nil {
		clock = model.SystemClock
	}
	return &Memory{
		policy: policy,
		now:    clock,
		hits:   make(map[string][]time.Time),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cutoff := now.Add(-m.policy.Window)

	m.calls++
	if m.calls%sweepEvery == 0 {
		m.sweep(cutoff)
	}

	hits := prune(m.hits[key], cutoff)
	if len(hits) >= m.policy.Max {
		m.hits[key] = hits
		return Decision{
			Allowed:    false,
			RetryAfter: hits[0].Add(m.policy.Window).Sub(now),
		}, nil
	}

	hits = append(hits, now)
	m.hits[key] = hits

	return Decision{
		Allowed:   true,
		Remaining: m.policy.Max - len(hits),
	}, nil
}

func (m *Memory) sweep(cutoff time.Time) {
	for key, hits := range m.hits {
		hits = prune(hits, cutoff)
		if len(hits) == 0 {
			delete(m.hits, key)
			continue
		}
		m.hits[key] = hits
	}
}

// prune drops hits at or before cutoff. hits is ordered oldest first.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
