package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"campusduel/internal/model"
)

// MatchCache keeps a hot snapshot of each live match and carries the
// pub/sub change-notification channel both clients subscribe to. The
// snapshot is a read accelerator only; Mongo stays authoritative.
type MatchCache interface {
	SetSnapshot(ctx context.Context, m *model.Match) error
	GetSnapshot(ctx context.Context, matchID string) (*model.Match, error)
	Delete(ctx context.Context, matchID string) error

	PublishEvent(ctx context.Context, event *model.MatchEvent) error
	Subscribe(ctx context.Context, matchID string) *redis.PubSub
}

type matchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMatchCache creates a new match cache
func NewMatchCache(client *redis.Client) MatchCache {
	return &matchCache{
		client: client,
		ttl:    24 * time.Hour, // abandoned matches expire after 24h
	}
}

func (c *matchCache) key(matchID string) string {
	return fmt.Sprintf("match:%s", matchID)
}

func (c *matchCache) channel(matchID string) string {
	return fmt.Sprintf("match:%s:events", matchID)
}

func (c *matchCache) SetSnapshot(ctx context.Context, m *model.Match) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(m.ID), data, c.ttl).Err()
}

func (c *matchCache) GetSnapshot(ctx context.Context, matchID string) (*model.Match, error) {
	data, err := c.client.Get(ctx, c.key(matchID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m model.Match
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *matchCache) Delete(ctx context.Context, matchID string) error {
	return c.client.Del(ctx, c.key(matchID)).Err()
}

func (c *matchCache) PublishEvent(ctx context.Context, event *model.MatchEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, c.channel(event.MatchID), data).Err()
}

func (c *matchCache) Subscribe(ctx context.Context, matchID string) *redis.PubSub {
	return c.client.Subscribe(ctx, c.channel(matchID))
}
