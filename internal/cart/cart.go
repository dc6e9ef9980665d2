// Package cart holds the in-memory shopping carts for the checkout flow.
// A cart lives per (session, restaurant slug) and is lost when the process
// restarts; durable cart storage is deliberately out of scope.
package cart

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/platewise/checkout-api/internal/enum"
	"github.com/platewise/checkout-api/internal/money"
)

// Validation errors surfaced as 400s by the handlers.
var (
	ErrInvalidTipMode    = errors.New("invalid tip mode")
	ErrTipPercentRange   = errors.New("tip percent must be between 0 and 100")
	ErrTipAmountRange    = errors.New("tip amount must be between 0 and 50000 cents")
	ErrMissingBuilding   = errors.New("building number is required")
	ErrMissingStreet     = errors.New("street name is required")
	ErrMissingCity       = errors.New("city is required")
	ErrInvalidState      = errors.New("state must be a two-letter US state code")
	ErrInvalidZip        = errors.New("zip must be 5 or 9 digits")
	ErrContactName       = errors.New("contact name must be at least 2 characters")
	ErrContactPhone      = errors.New("contact phone must be exactly 10 digits")
)

var (
	zipRe   = regexp.MustCompile(`^[0-9]{5}(-?[0-9]{4})?$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10}$`)
)

// Restaurant is the identity snapshot taken when a cart is created.
type Restaurant struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// LineItem is one selected menu item. Quantity is always >= 1; an item whose
// quantity would drop to zero is removed from the cart, never kept at zero.
type LineItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	Quantity    int64  `json:"quantity"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// ItemSnapshot is the menu-side view of an item passed to IncrementItem.
// Available reflects the catalog's availability flag at call time; the store
// rejects unavailable items to close the stale-availability race.
type ItemSnapshot struct {
	ID          int64
	Name        string
	PriceCents  int64
	Description string
	ImageURL    string
	Available   bool
}

// Tip is the committed tip selection. Exactly one mode is active; switching
// modes resets the other mode's stored value.
type Tip struct {
	Mode    string `json:"mode"`
	Percent int64  `json:"percent,omitempty"`
	Cents   int64  `json:"cents,omitempty"`
}

// Validate checks mode and range. The zero value (empty mode) is treated as
// no tip and is valid.
func (t Tip) Validate() error {
	switch t.Mode {
	case "", enum.TipModeNone:
		return nil
	case enum.TipModePercent:
		if t.Percent < 0 || t.Percent > 100 {
			return ErrTipPercentRange
		}
		return nil
	case enum.TipModeFixed:
		if t.Cents < 0 || t.Cents > money.MaxFixedTipCents {
			return ErrTipAmountRange
		}
		return nil
	}
	return ErrInvalidTipMode
}

// normalize clears the inactive mode's value so a later mode switch cannot
// leak a stale amount.
func (t Tip) normalize() Tip {
	switch t.Mode {
	case enum.TipModePercent:
		t.Cents = 0
	case enum.TipModeFixed:
		t.Percent = 0
	default:
		t.Mode = enum.TipModeNone
		t.Percent = 0
		t.Cents = 0
	}
	return t
}

// Address is a US street address, used for both delivery and billing.
type Address struct {
	BuildingNumber string `json:"building_number"`
	Street         string `json:"street"`
	Apartment      string `json:"apartment,omitempty"`
	City           string `json:"city"`
	State          string `json:"state"`
	Zip            string `json:"zip"`
}

// Validate checks the address fields shared by delivery and billing.
func (a Address) Validate() error {
	if strings.TrimSpace(a.BuildingNumber) == "" {
		return ErrMissingBuilding
	}
	if strings.TrimSpace(a.Street) == "" {
		return ErrMissingStreet
	}
	if strings.TrimSpace(a.City) == "" {
		return ErrMissingCity
	}
	if !enum.USStateCodes[strings.ToUpper(a.State)] {
		return ErrInvalidState
	}
	if !zipRe.MatchString(a.Zip) {
		return ErrInvalidZip
	}
	return nil
}

// Delivery is the delivery address plus contact details.
type Delivery struct {
	Address
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}

// Validate checks the full delivery form.
func (d Delivery) Validate() error {
	if err := d.Address.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(d.ContactName)) < 2 {
		return ErrContactName
	}
	if !phoneRe.MatchString(d.ContactPhone) {
		return ErrContactPhone
	}
	return nil
}

// PaymentProfile holds only display-safe card fields. The full card number
// and security code are validated and discarded; they are never stored.
type PaymentProfile struct {
	Brand     string `json:"brand"`
	LastFour  string `json:"last_four"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Expiry    string `json:"expiry"`
}

// Cart is one restaurant's in-progress order for one session.
type Cart struct {
	Restaurant Restaurant          `json:"restaurant"`
	Items      map[int64]*LineItem `json:"items"`
	Tip        Tip                 `json:"tip"`
	Delivery   *Delivery           `json:"delivery,omitempty"`
	Payment    *PaymentProfile     `json:"payment,omitempty"`
	Billing    *Address            `json:"billing,omitempty"`
}

// HasItems reports whether the cart holds at least one line item.
func (c *Cart) HasItems() bool {
	return c != nil && len(c.Items) > 0
}

// Lines returns the cart's items as calculator input, ordered by item ID so
// derived views are deterministic.
func (c *Cart) Lines() []money.Line {
	if c == nil {
		return nil
	}
	ids := c.SortedItemIDs()
	lines := make([]money.Line, 0, len(ids))
	for _, id := range ids {
		it := c.Items[id]
		lines = append(lines, money.Line{PriceCents: it.PriceCents, Quantity: it.Quantity})
	}
	return lines
}

// SortedItemIDs returns the item IDs in ascending order.
func (c *Cart) SortedItemIDs() []int64 {
	if c == nil {
		return nil
	}
	ids := make([]int64, 0, len(c.Items))
	for id := range c.Items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Totals computes the four monetary figures for the cart. A nil cart yields
// all-zero totals.
func (c *Cart) Totals() money.Totals {
	if c == nil {
		return money.Calculate(nil, money.TipChoice{Mode: enum.TipModeNone})
	}
	return money.Calculate(c.Lines(), money.TipChoice{
		Mode:    c.Tip.Mode,
		Percent: c.Tip.Percent,
		Cents:   c.Tip.Cents,
	})
}

// clone returns a deep copy so callers can read cart state without holding
// the store lock.
func (c *Cart) clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Items = make(map[int64]*LineItem, len(c.Items))
	for id, it := range c.Items {
		item := *it
		cp.Items[id] = &item
	}
	if c.Delivery != nil {
		d := *c.Delivery
		cp.Delivery = &d
	}
	if c.Payment != nil {
		p := *c.Payment
		cp.Payment = &p
	}
	if c.Billing != nil {
		b := *c.Billing
		cp.Billing = &b
	}
	return &cp
}
