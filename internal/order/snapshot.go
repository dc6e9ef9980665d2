package order

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/platewise/checkout-api/internal/cart"
	"github.com/platewise/checkout-api/internal/money"
	"github.com/shopspring/decimal"
)

// defaultEstimateMinutes is used when the order API sends an estimate we
// cannot parse.
const defaultEstimateMinutes = 45

// SnapshotLine is one line item with its computed subtotal.
type SnapshotLine struct {
	MenuItemID    int64  `json:"menu_item_id"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"price_cents"`
	Quantity      int64  `json:"quantity"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

// Snapshot is the display-only record of one placed order, built once per
// successful submission and immutable thereafter. Totals holds the local
// pre-submission estimate; ChargedTotalCents is the server's authoritative
// number and is what the shopper was actually charged.
type Snapshot struct {
	ID                uuid.UUID      `json:"id"`
	OrderNumber       string         `json:"order_number"`
	RestaurantName    string         `json:"restaurant_name"`
	PlacedAt          time.Time      `json:"placed_at"`
	EstimatedDelivery time.Time      `json:"estimated_delivery"`
	Lines             []SnapshotLine `json:"lines"`
	Totals            money.Totals   `json:"totals"`
	ChargedTotalCents int64          `json:"charged_total_cents"`
}

// buildSnapshot combines the server-assigned fields with the locally
// computed item list and totals. When the server's total disagrees with the
// local estimate, the server wins for the charged amount; a divergence is
// logged but not surfaced.
func buildSnapshot(c *cart.Cart, resp *CreateOrderResponse, placedAt time.Time) *Snapshot {
	totals := c.Totals()

	lines := make([]SnapshotLine, 0, len(c.Items))
	for _, id := range c.SortedItemIDs() {
		it := c.Items[id]
		lines = append(lines, SnapshotLine{
			MenuItemID:    it.ID,
			Name:          it.Name,
			PriceCents:    it.PriceCents,
			Quantity:      it.Quantity,
			SubtotalCents: it.PriceCents * it.Quantity,
		})
	}

	charged := totals.GrandTotalCents
	if cents, ok := dollarsToCents(resp.Total.String()); ok {
		if cents != totals.GrandTotalCents {
			log.Printf("order %s: server total %d cents differs from local estimate %d cents; using server total",
				resp.OrderNumber, cents, totals.GrandTotalCents)
		}
		charged = cents
	}

	return &Snapshot{
		ID:                uuid.New(),
		OrderNumber:       resp.OrderNumber,
		RestaurantName:    c.Restaurant.Name,
		PlacedAt:          placedAt,
		EstimatedDelivery: placedAt.Add(parseEstimateMinutes(resp.EstimatedDeliveryTime)),
		Lines:             lines,
		Totals:            totals,
		ChargedTotalCents: charged,
	}
}

// parseEstimateMinutes interprets the order API's "N minutes" estimate.
func parseEstimateMinutes(s string) time.Duration {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	log.Printf("unparseable delivery estimate %q, assuming %d minutes", s, defaultEstimateMinutes)
	return defaultEstimateMinutes * time.Minute
}

// dollarsToCents converts a decimal-dollar string to integer cents.
func dollarsToCents(s string) (int64, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), true
}
