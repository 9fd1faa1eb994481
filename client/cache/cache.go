package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/webhookx-io/hookdash/constants"
	"github.com/webhookx-io/hookdash/pkg/cache"
	"go.uber.org/zap"
)

const (
	DefaultSize = 100
	DefaultTTL  = time.Minute * 5
)

// QueryCache caches query results for one client session. Level 1 is an
// in-memory LRU, level 2 an optional shared cache that outlives the process.
type QueryCache[T any] struct {
	l1  *expirable.LRU[string, *T]
	l2  cache.Cache
	ttl time.Duration
	log *zap.SugaredLogger
}

type Options struct {
	Size int
	TTL  time.Duration
	L2   cache.Cache
}

func New[T any](opts Options) *QueryCache[T] {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &QueryCache[T]{
		l1:  expirable.NewLRU[string, *T](opts.Size, nil, opts.TTL),
		l2:  opts.L2,
		ttl: opts.TTL,
		log: zap.S().Named("cache"),
	}
}

// Key identifies an operation with its variables
func Key(operation string, variables map[string]interface{}) string {
	b, _ := json.Marshal(variables) // map keys are sorted
	return constants.ClientCacheKeyPrefix + operation + ":" + string(b)
}

// Get looks up L1 then L2. L2 failures are logged and treated as a miss.
func (c *QueryCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	if v, ok := c.l1.Get(key); ok {
		return v, true
	}
	if c.l2 == nil {
		return nil, false
	}

	value := new(T)
	exist, err := c.l2.Get(ctx, key, value)
	if err != nil {
		c.log.Warnf("failed to read %s: %v", key, err)
		return nil, false
	}
	if !exist {
		return nil, false
	}
	c.l1.Add(key, value)
	return value, true
}

func (c *QueryCache[T]) Put(ctx context.Context, key string, value *T) {
	if value == nil {
		return
	}
	c.l1.Add(key, value)
	if c.l2 != nil {
		if err := c.l2.Put(ctx, key, value, c.ttl); err != nil {
			c.log.Warnf("failed to write %s: %v", key, err)
		}
	}
}

func (c *QueryCache[T]) Invalidate(ctx context.Context, key string) error {
	c.log.Debugf("invalidating cache %s", key)
	c.l1.Remove(key)
	if c.l2 != nil {
		return c.l2.Remove(ctx, key)
	}
	return nil
}
