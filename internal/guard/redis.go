package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix  = "lockout:lock:"
	countKeyPrefix = "lockout:count:"
)

// RedisGuard is the LockoutGuard for multi-instance deployments. Counters
// use INCR so concurrent failures from several processes never lose
// increments; the lock itself is a keyed TTL entry, so expiry discards the
// record exactly as the in-memory guard does. A failure counter that sees
// no further failures for one lockout window expires on its own.
type RedisGuard struct {
	client    *redis.Client
	threshold int
	duration  time.Duration
}

func NewRedisGuard(client *redis.Client, threshold int, duration time.Duration) *RedisGuard {
	if threshold < 1 {
		threshold = 1
	}
	return &RedisGuard{client: client, threshold: threshold, duration: duration}
}

func (g *RedisGuard) Check(ctx context.Context, id string) (Status, error) {
	ttl, err := g.client.PTTL(ctx, lockKeyPrefix+id).Result()
	if err != nil {
		return Status{}, fmt.Errorf("lockout store unavailable: %w", err)
	}
	if ttl > 0 {
		return Status{Remaining: ttl}, nil
	}
	return Status{Allowed: true}, nil
}

func (g *RedisGuard) RecordFailure(ctx context.Context, id string) error {
	countKey := countKeyPrefix + id

	count, err := g.client.Incr(ctx, countKey).Result()
	if err != nil {
		return fmt.Errorf("lockout store unavailable: %w", err)
	}
	if count == 1 {
		if err := g.client.Expire(ctx, countKey, g.duration).Err(); err != nil {
			return fmt.Errorf("lockout store unavailable: %w", err)
		}
	}

	if count >= int64(g.threshold) {
		if err := g.client.Set(ctx, lockKeyPrefix+id, 1, g.duration).Err(); err != nil {
			return fmt.Errorf("lockout store unavailable: %w", err)
		}
		if err := g.client.Del(ctx, countKey).Err(); err != nil {
			return fmt.Errorf("lockout store unavailable: %w", err)
		}
	}
	return nil
}

func (g *RedisGuard) RecordSuccess(ctx context.Context, id string) error {
	if err := g.client.Del(ctx, countKeyPrefix+id, lockKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("lockout store unavailable: %w", err)
	}
	return nil
}
