package service

import (
	"context"
	"time"

	"campusduel/internal/cache"
)

// PresenceService is the liveness collaborator: players heartbeat while
// connected, and a player whose heartbeat key has lapsed is treated as
// gone. The heartbeat TTL is the disappearance grace period.
type PresenceService struct {
	presenceCache cache.PresenceCache
	grace         time.Duration
}

// NewPresenceService creates a new presence service
func NewPresenceService(presenceCache cache.PresenceCache, grace time.Duration) *PresenceService {
	return &PresenceService{
		presenceCache: presenceCache,
		grace:         grace,
	}
}

// Heartbeat refreshes a player's liveness window.
func (s *PresenceService) Heartbeat(ctx context.Context, matchID, playerID string) error {
	return s.presenceCache.Heartbeat(ctx, matchID, playerID, s.grace)
}

// IsPlayerLive reports whether the player has heartbeat within the grace
// period.
func (s *PresenceService) IsPlayerLive(ctx context.Context, matchID, playerID string) (bool, error) {
	return s.presenceCache.IsLive(ctx, matchID, playerID)
}

// Clear drops a player's presence key, e.g. after an explicit leave.
func (s *PresenceService) Clear(ctx context.Context, matchID, playerID string) error {
	return s.presenceCache.Clear(ctx, matchID, playerID)
}

// Grace returns the configured disappearance grace period.
func (s *PresenceService) Grace() time.Duration {
	return s.grace
}
