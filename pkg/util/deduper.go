package util

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper is a Redis SetNX guard. Used both to dedupe MQ deliveries and to
// throttle page-load-triggered reconciliation runs.
type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{rdb: rdb, ttl: ttl}
}

// AcquireOnce returns true the first time the key is seen within the TTL,
// false for duplicates. When Redis is unavailable it fails open: processing
// twice is safe everywhere this guard is used, skipping is not.
func (d *Deduper) AcquireOnce(ctx context.Context, scope string, id int64) bool {
	key := fmt.Sprintf("dedup:%s:%d", scope, id)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// AcquirePair is AcquireOnce keyed by two IDs (e.g. user + workspace).
func (d *Deduper) AcquirePair(ctx context.Context, scope string, a, b int64) bool {
	key := fmt.Sprintf("dedup:%s:%d:%d", scope, a, b)

	ok, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}
