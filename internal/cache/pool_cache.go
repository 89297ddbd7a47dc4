package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// PoolCache mirrors the catalog's image refs in a Redis set so round
// selection can check catalog exhaustion without a Mongo round trip.
type PoolCache interface {
	WarmPool(ctx context.Context, imageRefs []string) error
	PoolSize(ctx context.Context) (int64, error)
	InPool(ctx context.Context, imageRef string) (bool, error)
}

type poolCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPoolCache creates a new location pool cache
func NewPoolCache(client *redis.Client) PoolCache {
	return &poolCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *poolCache) key() string {
	return "catalog:pool"
}

func (c *poolCache) WarmPool(ctx context.Context, imageRefs []string) error {
	if len(imageRefs) == 0 {
		return nil
	}
	members := make([]interface{}, len(imageRefs))
	for i, ref := range imageRefs {
		members[i] = ref
	}
	if err := c.client.SAdd(ctx, c.key(), members...).Err(); err != nil {
		return err
	}
	return c.client.Expire(ctx, c.key(), c.ttl).Err()
}

func (c *poolCache) PoolSize(ctx context.Context) (int64, error) {
	return c.client.SCard(ctx, c.key()).Result()
}

func (c *poolCache) InPool(ctx context.Context, imageRef string) (bool, error) {
	return c.client.SIsMember(ctx, c.key(), imageRef).Result()
}
