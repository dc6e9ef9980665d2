package router

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/platewise/checkout-api/internal/cart"
	"github.com/platewise/checkout-api/internal/config"
	"github.com/platewise/checkout-api/internal/enum"
	"github.com/platewise/checkout-api/internal/handler"
	mw "github.com/platewise/checkout-api/internal/middleware"
	"github.com/platewise/checkout-api/internal/order"
	"github.com/platewise/checkout-api/internal/ws"
)

// New creates a Chi router with all application routes wired up. Every
// shopper-facing route sits behind the session middleware, which issues an
// anonymous session on first contact instead of rejecting.
func New(cfg *config.Config, menu handler.MenuService, carts *cart.Store, submitter handler.SubmitService, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",        // Next.js dev server
			"https://order.platewise.app",  // Production storefront
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route (validates the session token via query param)
	r.Get("/ws/restaurants/{slug}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.SessionSecret, w, r)
	})

	// Session-scoped routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Session(cfg.SessionSecret))

		restaurantHandler := handler.NewRestaurantHandler(menu, carts)
		r.Route("/restaurants", func(r chi.Router) {
			restaurantHandler.RegisterRoutes(r)

			r.Route("/{slug}", func(r chi.Router) {
				cartHandler := handler.NewCartHandler(menu, carts)
				r.Route("/cart", cartHandler.RegisterRoutes)

				checkoutHandler := handler.NewCheckoutHandler(carts, submitter)
				r.Route("/checkout", checkoutHandler.RegisterRoutes)
			})
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}

// HubNotifier adapts the WebSocket hub to the submitter's Notifier
// interface, pushing order.created events to the restaurant's room.
type HubNotifier struct {
	Hub *ws.Hub
}

func (n HubNotifier) OrderCreated(restaurantSlug string, snap *order.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("ERROR: marshal order.created payload: %v", err)
		return
	}
	n.Hub.BroadcastToRestaurant(restaurantSlug, ws.Event{
		Type:    enum.EventOrderCreated,
		Payload: payload,
	})
}
