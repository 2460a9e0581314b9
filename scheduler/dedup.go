package scheduler

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisDeduper claims idempotency keys with SETNX. The TTL only has to outlive
// the calendar day the key encodes; 48 hours leaves slack for clock skew.
type RedisDeduper struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewRedisDeduper(rdb *redis.Client) *RedisDeduper {
	return &RedisDeduper{RDB: rdb, TTL: 48 * time.Hour}
}

// Claim returns true iff this caller is the first to claim key.
func (d *RedisDeduper) Claim(ctx context.Context, key string) (bool, error) {
	return d.RDB.SetNX(ctx, "dedup:"+key, 1, d.TTL).Result()
}
