package counter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/webhookx-io/hookdash/constants"
)

// RedisLedger remembers delivery ids for ttl
type RedisLedger struct {
	c   *redis.Client
	ttl time.Duration
}

func NewRedisLedger(client *redis.Client, ttl time.Duration) *RedisLedger {
	return &RedisLedger{
		c:   client,
		ttl: ttl,
	}
}

func (l *RedisLedger) Acquire(ctx context.Context, id string) (bool, error) {
	return l.c.SetNX(ctx, constants.DedupKeyPrefix+id, 1, l.ttl).Result()
}

func (l *RedisLedger) Release(ctx context.Context, id string) error {
	return l.c.Del(ctx, constants.DedupKeyPrefix+id).Err()
}
