package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/platewise/checkout-api/internal/cart"
	"github.com/platewise/checkout-api/internal/catalog"
	"github.com/platewise/checkout-api/internal/middleware"
)

// MenuService defines the catalog methods needed by the handlers.
// Satisfied by *catalog.Service; narrow interface for testability.
type MenuService interface {
	ListRestaurants(ctx context.Context) ([]catalog.Restaurant, error)
	GetMenu(ctx context.Context, slug string) (*catalog.Menu, error)
}

// RestaurantHandler handles restaurant browsing endpoints.
type RestaurantHandler struct {
	menu  MenuService
	carts *cart.Store
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(menu MenuService, carts *cart.Store) *RestaurantHandler {
	return &RestaurantHandler{menu: menu, carts: carts}
}

// RegisterRoutes registers restaurant endpoints on the given Chi router.
func (h *RestaurantHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{slug}", h.Get)
}

type restaurantListResponse struct {
	Restaurants []catalog.Restaurant `json:"restaurants"`
}

// List handles GET /restaurants.
func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.menu.ListRestaurants(r.Context())
	if err != nil {
		log.Printf("ERROR: list restaurants: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if restaurants == nil {
		restaurants = []catalog.Restaurant{}
	}
	writeJSON(w, http.StatusOK, restaurantListResponse{Restaurants: restaurants})
}

// Get handles GET /restaurants/{slug}. Loading a menu marks the restaurant
// as the session's active cart context, creating an empty cart on first
// visit.
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionID(w, r)
	if !ok {
		return
	}

	slug := chi.URLParam(r, "slug")
	menu, err := h.menu.GetMenu(r.Context(), slug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: get menu: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.carts.SetActiveRestaurant(sessionID, cart.Restaurant{
		ID:   menu.Restaurant.ID,
		Slug: menu.Restaurant.Slug,
		Name: menu.Restaurant.Name,
	})

	writeJSON(w, http.StatusOK, menu)
}

// --- Shared helpers ---

// sessionID pulls the browsing session from the request context. The
// session middleware always sets one; a miss means the route was mounted
// without it.
func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.SessionIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no session"})
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
