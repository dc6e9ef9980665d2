package catalog

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"
)

// Lookup is the slice of Store the service needs.
type Lookup interface {
	ListRestaurants(ctx context.Context) ([]Restaurant, error)
	GetRestaurantBySlug(ctx context.Context, slug string) (Restaurant, error)
	ListMenuItems(ctx context.Context, restaurantID int64) ([]MenuItem, error)
}

// Service answers catalog reads. Menu lookups go through the cache and are
// deduplicated with singleflight so a cold popular menu triggers one
// database read, not one per concurrent shopper. Cache failures are logged
// and treated as misses; the database is always authoritative.
type Service struct {
	store Lookup
	cache MenuCache
	sfg   singleflight.Group
}

// NewService creates a catalog service. cache may be nil to disable caching.
func NewService(store Lookup, cache MenuCache) *Service {
	return &Service{store: store, cache: cache}
}

// ListRestaurants returns all active restaurants, uncached.
func (s *Service) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	return s.store.ListRestaurants(ctx)
}

// GetMenu returns one restaurant's menu, from cache when possible.
func (s *Service) GetMenu(ctx context.Context, slug string) (*Menu, error) {
	v, err, _ := s.sfg.Do(slug, func() (interface{}, error) {
		if s.cache != nil {
			menu, err := s.cache.Get(ctx, slug)
			if err == nil {
				return menu, nil
			}
			if !errors.Is(err, ErrCacheMiss) {
				log.Printf("ERROR: menu cache get: %v", err)
			}
		}

		restaurant, err := s.store.GetRestaurantBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		items, err := s.store.ListMenuItems(ctx, restaurant.ID)
		if err != nil {
			return nil, err
		}
		menu := &Menu{Restaurant: restaurant, Items: items}

		if s.cache != nil {
			go func() {
				cctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := s.cache.Set(cctx, slug, menu); err != nil {
					log.Printf("ERROR: menu cache set: %v", err)
				}
			}()
		}
		return menu, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Menu), nil
}
