package service

import (
	"context"
	"fmt"

	"campusduel/internal/cache"
	"campusduel/internal/model"
	"campusduel/internal/repository"
)

// CatalogService is the engine's view of the campus photo catalog. Rounds
// draw locations through it so no image repeats within a match.
type CatalogService struct {
	locationRepo repository.LocationRepo
	poolCache    cache.PoolCache
}

// NewCatalogService creates a new catalog service
func NewCatalogService(locationRepo repository.LocationRepo, poolCache cache.PoolCache) *CatalogService {
	return &CatalogService{
		locationRepo: locationRepo,
		poolCache:    poolCache,
	}
}

// WarmPool mirrors the catalog image refs into Redis so exhaustion checks
// skip Mongo. Safe to call repeatedly.
func (s *CatalogService) WarmPool(ctx context.Context) error {
	locations, err := s.locationRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	refs := make([]string, len(locations))
	for i, loc := range locations {
		refs[i] = loc.ImageRef
	}
	return s.poolCache.WarmPool(ctx, refs)
}

// SelectUnusedLocation picks a random catalog location whose image has not
// been shown in the match yet.
func (s *CatalogService) SelectUnusedLocation(ctx context.Context, excludeRefs []string) (*model.Location, error) {
	// Cheap exhaustion check against the cached pool before sampling.
	if size, err := s.poolCache.PoolSize(ctx); err == nil && size > 0 && int64(len(excludeRefs)) >= size {
		return nil, ErrCatalogExhausted
	}

	loc, err := s.locationRepo.SelectUnused(ctx, excludeRefs)
	if err != nil {
		return nil, fmt.Errorf("failed to select location: %w", err)
	}
	if loc == nil {
		return nil, ErrCatalogExhausted
	}
	return loc, nil
}
