package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/folio-server/internal/model"
)

var _ Limiter = (*Redis)(nil)

// Redis keeps the sliding-window log in a sorted set per key, scored by
// request time in milliseconds, so several instances share one budget.
type Redis struct {
	client redis.UniversalClient
	prefix string
	policy Policy
	now    model.Clock
}

// NewRedis creates a limiter storing its windows under prefix.
func NewRedis(client redis.UniversalClient, prefix string, policy Policy, clock model.Clock) *Redis {
	if clock == nil {
		clock = model.SystemClock
	}
	return &Redis{
		client: client,
		prefix: prefix,
		policy: policy,
		now:    clock,
	}
}

func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	now := r.now()
	nowMs := now.UnixMilli()
	cutoff := nowMs - r.policy.Window.Milliseconds()
	redisKey := r.key(key)
	member := strconv.FormatInt(nowMs, 10) + ":" + uuid.NewString()

	var card *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(cutoff, 10))
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowMs), Member: member})
		card = pipe.ZCard(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, r.policy.Window)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("failed to update rate window: %w", err)
	}

	count := int(card.Val())
	if count <= r.policy.Max {
		return Decision{
			Allowed:   true,
			Remaining: r.policy.Max - count,
		}, nil
	}

	// rejected requests do not consume budget
	if err := r.client.ZRem(ctx, redisKey, member).Err(); err != nil {
		return Decision{}, fmt.Errorf("failed to roll back rate window: %w", err)
	}

	retryAfter := r.policy.Window
	oldest, err := r.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to read rate window: %w", err)
	}
	if len(oldest) == 1 {
		retryAfter = time.UnixMilli(int64(oldest[0].Score)).Add(r.policy.Window).Sub(now)
	}

	return Decision{
		Allowed:    false,
		RetryAfter: retryAfter,
	}, nil
}

func (r *Redis) key(key string) string {
	return r.prefix + ":" + r.policy.Name + ":" + key
}
