package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceCache tracks player liveness through heartbeat keys with a TTL.
// A player whose key has expired is considered gone; the match service
// turns that into a forfeit after the grace period.
type PresenceCache interface {
	Heartbeat(ctx context.Context, matchID, playerID string, ttl time.Duration) error
	IsLive(ctx context.Context, matchID, playerID string) (bool, error)
	Clear(ctx context.Context, matchID, playerID string) error
}

type presenceCache struct {
	client *redis.Client
}

// NewPresenceCache creates a new presence cache
func NewPresenceCache(client *redis.Client) PresenceCache {
	return &presenceCache{
		client: client,
	}
}

func (c *presenceCache) key(matchID, playerID string) string {
	return fmt.Sprintf("match:%s:presence:%s", matchID, playerID)
}

func (c *presenceCache) Heartbeat(ctx context.Context, matchID, playerID string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(matchID, playerID), time.Now().Unix(), ttl).Err()
}

func (c *presenceCache) IsLive(ctx context.Context, matchID, playerID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(matchID, playerID)).Result()
	return n > 0, err
}

func (c *presenceCache) Clear(ctx context.Context, matchID, playerID string) error {
	return c.client.Del(ctx, c.key(matchID, playerID)).Err()
}
