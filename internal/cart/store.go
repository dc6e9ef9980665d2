package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/platewise/checkout-api/internal/enum"
)

// cartKey identifies one cart: one session shopping at one restaurant.
type cartKey struct {
	session uuid.UUID
	slug    string
}

// Store holds every live cart in memory. It is owned by the server and
// injected into handlers; there is no package-level instance. All mutations
// are guarded by a single mutex, so each operation is atomic from the
// caller's perspective. Mutating operations on a missing cart are no-ops,
// never errors.
type Store struct {
	mu     sync.RWMutex
	carts  map[cartKey]*Cart
	active map[uuid.UUID]string // session -> slug of the restaurant last browsed
}

// NewStore creates an empty cart store.
func NewStore() *Store {
	return &Store{
		carts:  make(map[cartKey]*Cart),
		active: make(map[uuid.UUID]string),
	}
}

// ensureCart returns the cart for (session, restaurant), creating an empty
// shell on first use. Caller must hold s.mu.
func (s *Store) ensureCart(session uuid.UUID, r Restaurant) *Cart {
	key := cartKey{session: session, slug: r.Slug}
	c, ok := s.carts[key]
	if !ok {
		c = &Cart{
			Restaurant: r,
			Items:      make(map[int64]*LineItem),
			Tip:        Tip{Mode: enum.TipModeNone},
		}
		s.carts[key] = c
	}
	return c
}

// SetActiveRestaurant idempotently ensures a cart exists for the restaurant
// and marks it as the session's active restaurant. Called when a menu page
// loads; repeated calls are harmless.
func (s *Store) SetActiveRestaurant(session uuid.UUID, r Restaurant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureCart(session, r)
	s.active[session] = r.Slug
}

// ActiveRestaurant returns the slug of the session's active restaurant.
func (s *Store) ActiveRestaurant(session uuid.UUID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slug, ok := s.active[session]
	return slug, ok
}

// IncrementItem adds one unit of the item to the restaurant's cart, creating
// the line at quantity 1 if new. Snapshot fields (name, price, description,
// image) are refreshed on every call so a stale copy self-corrects. Items
// flagged unavailable are rejected as a no-op.
func (s *Store) IncrementItem(session uuid.UUID, r Restaurant, snap ItemSnapshot) {
	if !snap.Available {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.ensureCart(session, r)
	it, ok := c.Items[snap.ID]
	if !ok {
		c.Items[snap.ID] = &LineItem{
			ID:          snap.ID,
			Name:        snap.Name,
			PriceCents:  snap.PriceCents,
			Quantity:    1,
			Description: snap.Description,
			ImageURL:    snap.ImageURL,
		}
		return
	}
	it.Quantity++
	it.Name = snap.Name
	it.PriceCents = snap.PriceCents
	it.Description = snap.Description
	it.ImageURL = snap.ImageURL
}

// DecrementItem removes one unit of the item; at quantity zero the line is
// deleted entirely. No-op if the cart or item does not exist.
func (s *Store) DecrementItem(session uuid.UUID, slug string, itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartKey{session: session, slug: slug}]
	if !ok {
		return
	}
	it, ok := c.Items[itemID]
	if !ok {
		return
	}
	it.Quantity--
	if it.Quantity <= 0 {
		delete(c.Items, itemID)
	}
}

// SetTip replaces the cart's tip selection wholesale. The stored value is
// normalized so only the active mode carries an amount.
func (s *Store) SetTip(session uuid.UUID, slug string, tip Tip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartKey{session: session, slug: slug}]
	if !ok {
		return
	}
	c.Tip = tip.normalize()
}

// SetDelivery replaces the cart's delivery details wholesale.
func (s *Store) SetDelivery(session uuid.UUID, slug string, d Delivery) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartKey{session: session, slug: slug}]
	if !ok {
		return
	}
	c.Delivery = &d
}

// SetPayment attaches the validated payment display profile and billing
// address. Only called after card validation has passed.
func (s *Store) SetPayment(session uuid.UUID, slug string, p PaymentProfile, billing Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartKey{session: session, slug: slug}]
	if !ok {
		return
	}
	c.Payment = &p
	c.Billing = &billing
}

// ClearCart deletes the cart. Called the instant an order submission succeeds
// so a revisit cannot double-submit stale state. Clears the session's active
// pointer if it referenced this restaurant.
func (s *Store) ClearCart(session uuid.UUID, slug string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartKey{session: session, slug: slug})
	if s.active[session] == slug {
		delete(s.active, session)
	}
}

// Get returns a deep copy of the cart, or ok=false if none exists.
func (s *Store) Get(session uuid.UUID, slug string) (*Cart, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[cartKey{session: session, slug: slug}]
	if !ok {
		return nil, false
	}
	return c.clone(), true
}
