package order

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/platewise/checkout-api/internal/cart"
)

// Creator is the slice of the order API client the submitter needs.
type Creator interface {
	Create(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error)
}

// Notifier receives successful submissions, e.g. the websocket hub pushing
// order.created events to kitchen dashboards.
type Notifier interface {
	OrderCreated(restaurantSlug string, snap *Snapshot)
}

type submitKey struct {
	session uuid.UUID
	slug    string
}

// Submitter turns a completed cart into a placed order exactly once. A
// per-cart in-flight flag makes double-invocation (a re-rendered page firing
// the same request twice) perform a single network call; the flag resets on
// failure so a deliberate retry goes through. The cart is deleted the
// instant a submission succeeds.
type Submitter struct {
	client   Creator
	carts    *cart.Store
	notifier Notifier

	mu       sync.Mutex
	inflight map[submitKey]bool

	now func() time.Time
}

// NewSubmitter creates a Submitter. notifier may be nil.
func NewSubmitter(client Creator, carts *cart.Store, notifier Notifier) *Submitter {
	return &Submitter{
		client:   client,
		carts:    carts,
		notifier: notifier,
		inflight: make(map[submitKey]bool),
		now:      time.Now,
	}
}

// Submit validates the cart, calls the order API once, and returns the
// display snapshot. Errors follow the package taxonomy: *ValidationError
// before any network I/O, *NetworkError / *ServerRejection after (both
// retryable, cart preserved), ErrSubmissionInFlight for a duplicate call.
func (s *Submitter) Submit(ctx context.Context, session uuid.UUID, slug string) (*Snapshot, error) {
	c, ok := s.carts.Get(session, slug)
	if !ok {
		return nil, &ValidationError{Reason: "no cart for this restaurant"}
	}

	// Validation happens before the in-flight flag so a malformed cart never
	// blocks a corrected retry.
	req, err := BuildRequest(c)
	if err != nil {
		return nil, err
	}

	key := submitKey{session: session, slug: slug}
	s.mu.Lock()
	if s.inflight[key] {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	s.inflight[key] = true
	s.mu.Unlock()

	resp, err := s.client.Create(ctx, req)

	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()

	if err != nil {
		// Cart stays intact so a transient failure does not lose the order.
		return nil, err
	}

	snap := buildSnapshot(c, resp, s.now())

	// Delete the cart first: a revisit after this point must start over, not
	// resubmit.
	s.carts.ClearCart(session, slug)

	if s.notifier != nil {
		s.notifier.OrderCreated(slug, snap)
	}
	return snap, nil
}
