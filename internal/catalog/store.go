package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DB is the slice of pgxpool.Pool the store needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads the catalog from Postgres.
type Store struct {
	db DB
}

// NewStore creates a catalog store over the given pool.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// ListRestaurants returns all active restaurants ordered by name.
func (s *Store) ListRestaurants(ctx context.Context) ([]Restaurant, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, slug, name, COALESCE(description, ''), COALESCE(image_url, '')
		FROM restaurants
		WHERE is_active
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		var r Restaurant
		if err := rows.Scan(&r.ID, &r.Slug, &r.Name, &r.Description, &r.ImageURL); err != nil {
			return nil, fmt.Errorf("scan restaurant: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRestaurantBySlug returns one active restaurant, ErrNotFound if absent.
func (s *Store) GetRestaurantBySlug(ctx context.Context, slug string) (Restaurant, error) {
	var r Restaurant
	err := s.db.QueryRow(ctx, `
		SELECT id, slug, name, COALESCE(description, ''), COALESCE(image_url, '')
		FROM restaurants
		WHERE slug = $1 AND is_active`, slug).
		Scan(&r.ID, &r.Slug, &r.Name, &r.Description, &r.ImageURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return Restaurant{}, ErrNotFound
	}
	if err != nil {
		return Restaurant{}, fmt.Errorf("get restaurant %q: %w", slug, err)
	}
	return r, nil
}

// ListMenuItems returns a restaurant's menu ordered by name, including
// currently unavailable items.
func (s *Store) ListMenuItems(ctx context.Context, restaurantID int64) ([]MenuItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, restaurant_id, name, COALESCE(description, ''),
		       price_cents, COALESCE(image_url, ''), is_available
		FROM menu_items
		WHERE restaurant_id = $1
		ORDER BY name`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var out []MenuItem
	for rows.Next() {
		var it MenuItem
		if err := rows.Scan(&it.ID, &it.RestaurantID, &it.Name, &it.Description,
			&it.PriceCents, &it.ImageURL, &it.Available); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
