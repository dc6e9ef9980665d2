// Package catalog is the restaurant and menu lookup layer consumed by the
// checkout flow: Postgres is the source of truth, Redis is a best-effort
// read-through cache.
package catalog

import "errors"

// ErrNotFound is returned when a restaurant or menu item does not exist.
var ErrNotFound = errors.New("not found")

// Restaurant is one listed restaurant.
type Restaurant struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// MenuItem is one orderable item. Available gates whether it can enter a
// cart; unavailable items still render on the menu.
type MenuItem struct {
	ID           int64  `json:"id"`
	RestaurantID int64  `json:"restaurant_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PriceCents   int64  `json:"price_cents"`
	ImageURL     string `json:"image_url,omitempty"`
	Available    bool   `json:"available"`
}

// Menu is a restaurant with its full item list, the unit served by the cache.
type Menu struct {
	Restaurant Restaurant `json:"restaurant"`
	Items      []MenuItem `json:"items"`
}

// Item finds a menu item by ID, ok=false if absent.
func (m *Menu) Item(id int64) (MenuItem, bool) {
	for _, it := range m.Items {
		if it.ID == id {
			return it, true
		}
	}
	return MenuItem{}, false
}
