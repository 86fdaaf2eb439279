package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LakLN/Book-Garden-Server-v2/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisOrderCache stores order views keyed per order id. Mutating operations
// invalidate exactly the affected order instead of flushing the cache.
type RedisOrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOrderCache(rdb *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{rdb: rdb, ttl: ttl}
}

func viewKey(orderID string) string { return "order:view:" + orderID }

func (r *RedisOrderCache) GetView(ctx context.Context, orderID string) (*usecase.OrderView, bool, error) {
	raw, err := r.rdb.Get(ctx, viewKey(orderID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var view usecase.OrderView
	if err := json.Unmarshal(raw, &view); err != nil {
		// Poison entry; drop it rather than serve it.
		_ = r.rdb.Del(ctx, viewKey(orderID)).Err()
		return nil, false, nil
	}
	return &view, true, nil
}

func (r *RedisOrderCache) SetView(ctx context.Context, view *usecase.OrderView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, viewKey(view.ID), raw, r.ttl).Err()
}

func (r *RedisOrderCache) Invalidate(ctx context.Context, orderID string) error {
	return r.rdb.Del(ctx, viewKey(orderID)).Err()
}

var _ usecase.OrderCache = (*RedisOrderCache)(nil)
