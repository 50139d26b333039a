package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/picshare/readpath/internal/logging"
)

// Redis is a Store backed by a shared Redis instance. All backend errors are
// absorbed here: Get degrades to a miss, Set and the invalidations to no-ops,
// with a warn-level log line for operator visibility.
type Redis struct {
	client *redis.Client
	logger logging.Logger
}

// NewRedis wraps an already-configured client. The caller owns the client's
// lifecycle.
func NewRedis(client *redis.Client, logger logging.Logger) *Redis {
	return &Redis{client: client, logger: logger.With("component", "cache")}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn(ctx, "cache get failed, treating as miss", "key", key, "err", err)
		}
		return nil, false
	}
	return b, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn(ctx, "cache set failed, skipping", "key", key, "err", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Warn(ctx, "cache invalidate failed", "key", key, "err", err)
	}
}

func (r *Redis) InvalidatePrefix(ctx context.Context, prefix string) {
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.Warn(ctx, "cache invalidate failed", "key", iter.Val(), "err", err)
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn(ctx, "cache prefix scan failed", "prefix", prefix, "err", err)
	}
}
