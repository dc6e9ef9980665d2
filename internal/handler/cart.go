package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/platewise/checkout-api/internal/card"
	"github.com/platewise/checkout-api/internal/cart"
	"github.com/platewise/checkout-api/internal/catalog"
	"github.com/platewise/checkout-api/internal/enum"
	"github.com/platewise/checkout-api/internal/money"
	"github.com/shopspring/decimal"
)

// CartHandler handles cart mutation and read endpoints.
type CartHandler struct {
	menu  MenuService
	carts *cart.Store
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(menu MenuService, carts *cart.Store) *CartHandler {
	return &CartHandler{menu: menu, carts: carts}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
// Expected to be mounted at /restaurants/{slug}/cart.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Delete("/items/{itemID}", h.RemoveItem)
	r.Put("/tip", h.SetTip)
	r.Put("/delivery", h.SetDelivery)
	r.Put("/payment", h.SetPayment)
}

// --- Request / Response types ---

type addItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
}

type paymentRequest struct {
	CardType     string       `json:"card_type"`
	Number       string       `json:"number"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	Expiry       string       `json:"expiry"`
	SecurityCode string       `json:"security_code"`
	Billing      cart.Address `json:"billing"`
}

// totalsDisplay formats the four figures as decimal-dollar strings for the
// frontend; the cents values stay the source of truth.
type totalsDisplay struct {
	Subtotal      string `json:"subtotal"`
	ServiceCharge string `json:"service_charge"`
	Tip           string `json:"tip"`
	GrandTotal    string `json:"grand_total"`
}

type cartResponse struct {
	Restaurant cart.Restaurant      `json:"restaurant"`
	Items      []cart.LineItem      `json:"items"`
	Tip        cart.Tip             `json:"tip"`
	Delivery   *cart.Delivery       `json:"delivery,omitempty"`
	Payment    *cart.PaymentProfile `json:"payment,omitempty"`
	Billing    *cart.Address        `json:"billing,omitempty"`
	Totals     money.Totals         `json:"totals"`
	Display    totalsDisplay        `json:"display"`
}

// --- Handlers ---

// Get handles GET /restaurants/{slug}/cart. A missing cart renders as an
// empty cart with all-zero totals rather than an error, so pages have a
// safe default before the first item is added.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")

	c, _ := h.carts.Get(sessionID, slug)
	writeJSON(w, http.StatusOK, toCartResponse(slug, c))
}

// AddItem handles POST /restaurants/{slug}/cart/items. Availability is
// checked against the live catalog here, and again inside the store with
// the flag we pass through, so a menu cached by the browser cannot sneak a
// just-disabled item into an order.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	menu, err := h.menu.GetMenu(r.Context(), slug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "restaurant not found"})
			return
		}
		log.Printf("ERROR: get menu for add item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	item, ok := menu.Item(req.MenuItemID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}
	if !item.Available {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "menu item is unavailable"})
		return
	}

	h.carts.IncrementItem(sessionID, cart.Restaurant{
		ID:   menu.Restaurant.ID,
		Slug: menu.Restaurant.Slug,
		Name: menu.Restaurant.Name,
	}, cart.ItemSnapshot{
		ID:          item.ID,
		Name:        item.Name,
		PriceCents:  item.PriceCents,
		Description: item.Description,
		ImageURL:    item.ImageURL,
		Available:   item.Available,
	})

	c, _ := h.carts.Get(sessionID, slug)
	writeJSON(w, http.StatusOK, toCartResponse(slug, c))
}

// RemoveItem handles DELETE /restaurants/{slug}/cart/items/{itemID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	h.carts.DecrementItem(sessionID, slug, itemID)

	c, _ := h.carts.Get(sessionID, slug)
	writeJSON(w, http.StatusOK, toCartResponse(slug, c))
}

// SetTip handles PUT /restaurants/{slug}/cart/tip.
func (h *CartHandler) SetTip(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")

	var tip cart.Tip
	if err := json.NewDecoder(r.Body).Decode(&tip); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := tip.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if _, ok := h.carts.Get(sessionID, slug); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no cart for this restaurant"})
		return
	}

	h.carts.SetTip(sessionID, slug, tip)
	c, _ := h.carts.Get(sessionID, slug)
	writeJSON(w, http.StatusOK, toCartResponse(slug, c))
}

// SetDelivery handles PUT /restaurants/{slug}/cart/delivery.
func (h *CartHandler) SetDelivery(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")

	var d cart.Delivery
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	d.State = strings.ToUpper(d.State)
	if err := d.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if _, ok := h.carts.Get(sessionID, slug); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no cart for this restaurant"})
		return
	}

	h.carts.SetDelivery(sessionID, slug, d)
	c, _ := h.carts.Get(sessionID, slug)
	writeJSON(w, http.StatusOK, toCartResponse(slug, c))
}

// SetPayment handles PUT /restaurants/{slug}/cart/payment. The card number
// and security code are validated and discarded; only display-safe fields
// reach the cart.
func (h *CartHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	digits := strings.NewReplacer(" ", "", "-", "").Replace(req.Number)

	brand := strings.ToUpper(strings.TrimSpace(req.CardType))
	if brand == "" {
		brand = card.DetectBrand(digits)
	}
	if !card.Validate(brand, digits) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid card number"})
		return
	}
	if !card.ValidExpiry(req.Expiry) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expiry"})
		return
	}
	if !card.ValidSecurityCode(req.SecurityCode) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid security code"})
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cardholder name is required"})
		return
	}
	req.Billing.State = strings.ToUpper(req.Billing.State)
	if err := req.Billing.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "billing: " + err.Error()})
		return
	}

	if _, ok := h.carts.Get(sessionID, slug); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no cart for this restaurant"})
		return
	}

	h.carts.SetPayment(sessionID, slug, cart.PaymentProfile{
		Brand:     brand,
		LastFour:  card.LastFour(digits),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Expiry:    req.Expiry,
	}, req.Billing)

	c, _ := h.carts.Get(sessionID, slug)
	writeJSON(w, http.StatusOK, toCartResponse(slug, c))
}

// Clear handles DELETE /restaurants/{slug}/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")

	h.carts.ClearCart(sessionID, slug)
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func toCartResponse(slug string, c *cart.Cart) cartResponse {
	resp := cartResponse{
		Restaurant: cart.Restaurant{Slug: slug},
		Items:      []cart.LineItem{},
		Tip:        cart.Tip{Mode: enum.TipModeNone},
	}
	if c != nil {
		resp.Restaurant = c.Restaurant
		resp.Tip = c.Tip
		resp.Delivery = c.Delivery
		resp.Payment = c.Payment
		resp.Billing = c.Billing
		for _, id := range c.SortedItemIDs() {
			resp.Items = append(resp.Items, *c.Items[id])
		}
		resp.Totals = c.Totals()
	}
	resp.Display = totalsDisplay{
		Subtotal:      centsToDollars(resp.Totals.SubtotalCents),
		ServiceCharge: centsToDollars(resp.Totals.ServiceChargeCents),
		Tip:           centsToDollars(resp.Totals.TipCents),
		GrandTotal:    centsToDollars(resp.Totals.GrandTotalCents),
	}
	return resp
}

func centsToDollars(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
