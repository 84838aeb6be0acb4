package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRequestLimiter enforces the cooldown with SET NX + TTL, so the window
// is shared across replicas and survives restarts.
type RedisRequestLimiter struct {
	redis    redis.UniversalClient
	prefix   string
	cooldown time.Duration
}

func NewRedisRequestLimiter(redisClient redis.UniversalClient, prefix string, cooldown time.Duration) *RedisRequestLimiter {
	if prefix == "" {
		prefix = "ac"
	}
	return &RedisRequestLimiter{
		redis:    redisClient,
		prefix:   prefix,
		cooldown: cooldown,
	}
}

func (l *RedisRequestLimiter) key(addr string) string {
	return l.prefix + ":rl:" + addr
}

func (l *RedisRequestLimiter) TryAcquire(ctx context.Context, addr string, _ time.Time) (bool, error) {
	ok, err := l.redis.SetNX(ctx, l.key(addr), "1", l.cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return ok, nil
}
