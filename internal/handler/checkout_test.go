package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/platewise/checkout-api/internal/cart"
	"github.com/platewise/checkout-api/internal/handler"
	"github.com/platewise/checkout-api/internal/middleware"
	"github.com/platewise/checkout-api/internal/order"
)

// --- Mock SubmitService ---

type mockSubmitService struct {
	submitFn func(ctx context.Context, session uuid.UUID, slug string) (*order.Snapshot, error)
	calls    int
}

func (m *mockSubmitService) Submit(ctx context.Context, session uuid.UUID, slug string) (*order.Snapshot, error) {
	m.calls++
	if m.submitFn != nil {
		return m.submitFn(ctx, session, slug)
	}
	return nil, errors.New("submitFn not set")
}

func setupCheckoutRouter(carts *cart.Store, submitter *mockSubmitService) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Session(testSessionSecret))
	r.Route("/restaurants/{slug}/checkout", handler.NewCheckoutHandler(carts, submitter).RegisterRoutes)
	return r
}

// readyCart seeds a cart that can pass the confirmation guard.
func readyCart(t *testing.T, carts *cart.Store, sessionID uuid.UUID, slug string) {
	t.Helper()
	rest := cart.Restaurant{ID: 7, Slug: slug, Name: "Pizza Palace"}
	carts.IncrementItem(sessionID, rest, cart.ItemSnapshot{
		ID: 1, Name: "Margherita", PriceCents: 1250, Available: true,
	})
	carts.SetDelivery(sessionID, slug, testDelivery())
	carts.SetPayment(sessionID, slug, cart.PaymentProfile{
		Brand: "VISA", LastFour: "4242", FirstName: "Sam", LastName: "Carter", Expiry: "12/30",
	}, testDelivery().Address)
}

// --- Step guard endpoint ---

func TestCheckoutStepUnknown(t *testing.T) {
	router := setupCheckoutRouter(cart.NewStore(), &mockSubmitService{})

	rr := doSessionRequest(t, router, "GET", "/restaurants/pizza-palace/checkout/BAGGING", nil, uuid.New())
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown step, got %d", rr.Code)
	}
}

func TestCheckoutStepRedirects(t *testing.T) {
	carts := cart.NewStore()
	router := setupCheckoutRouter(carts, &mockSubmitService{})
	sessionID := uuid.New()
	rest := cart.Restaurant{ID: 7, Slug: "pizza-palace", Name: "Pizza Palace"}

	// Empty cart: everything past the menu bounces back to it.
	rr := doSessionRequest(t, router, "GET", "/restaurants/pizza-palace/checkout/REVIEW", nil, sessionID)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp["allowed"] != false || resp["redirect_to"] != "MENU" {
		t.Errorf("empty cart on REVIEW: got %v, want redirect to MENU", resp)
	}

	// With an item, review opens but confirmation still needs delivery.
	carts.IncrementItem(sessionID, rest, cart.ItemSnapshot{ID: 1, Name: "Margherita", PriceCents: 1250, Available: true})

	rr = doSessionRequest(t, router, "GET", "/restaurants/pizza-palace/checkout/REVIEW", nil, sessionID)
	if resp = decodeResponse(t, rr); resp["allowed"] != true {
		t.Errorf("REVIEW with items: got %v, want allowed", resp)
	}

	rr = doSessionRequest(t, router, "GET", "/restaurants/pizza-palace/checkout/CONFIRMATION", nil, sessionID)
	if resp = decodeResponse(t, rr); resp["redirect_to"] != "DELIVERY" {
		t.Errorf("CONFIRMATION without delivery: got %v, want redirect to DELIVERY", resp)
	}

	// With delivery, confirmation needs payment next.
	carts.SetDelivery(sessionID, "pizza-palace", testDelivery())
	rr = doSessionRequest(t, router, "GET", "/restaurants/pizza-palace/checkout/CONFIRMATION", nil, sessionID)
	if resp = decodeResponse(t, rr); resp["redirect_to"] != "PAYMENT" {
		t.Errorf("CONFIRMATION without payment: got %v, want redirect to PAYMENT", resp)
	}
}

// --- Submission endpoint ---

func TestSubmitGuardBlocksIncompleteCart(t *testing.T) {
	carts := cart.NewStore()
	submitter := &mockSubmitService{}
	router := setupCheckoutRouter(carts, submitter)
	sessionID := uuid.New()

	carts.IncrementItem(sessionID, cart.Restaurant{ID: 7, Slug: "pizza-palace", Name: "Pizza Palace"},
		cart.ItemSnapshot{ID: 1, Name: "Margherita", PriceCents: 1250, Available: true})

	rr := doSessionRequest(t, router, "POST", "/restaurants/pizza-palace/checkout/submit", nil, sessionID)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for incomplete cart, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp["redirect_to"] != "DELIVERY" {
		t.Errorf("redirect_to = %v, want DELIVERY", resp["redirect_to"])
	}
	if submitter.calls != 0 {
		t.Errorf("submitter called %d times behind the guard, want 0", submitter.calls)
	}
}

func TestSubmitSuccess(t *testing.T) {
	carts := cart.NewStore()
	submitter := &mockSubmitService{
		submitFn: func(ctx context.Context, session uuid.UUID, slug string) (*order.Snapshot, error) {
			return &order.Snapshot{
				ID:                uuid.New(),
				OrderNumber:       "ORD-1042",
				RestaurantName:    "Pizza Palace",
				PlacedAt:          time.Now(),
				ChargedTotalCents: 1353,
			}, nil
		},
	}
	router := setupCheckoutRouter(carts, submitter)
	sessionID := uuid.New()
	readyCart(t, carts, sessionID, "pizza-palace")

	rr := doSessionRequest(t, router, "POST", "/restaurants/pizza-palace/checkout/submit", nil, sessionID)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["order_number"] != "ORD-1042" {
		t.Errorf("order_number = %v, want ORD-1042", resp["order_number"])
	}
	if resp["charged_total_cents"].(float64) != 1353 {
		t.Errorf("charged_total_cents = %v, want 1353", resp["charged_total_cents"])
	}
}

func TestSubmitErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		retryable  bool
	}{
		{
			name:       "in flight duplicate",
			err:        order.ErrSubmissionInFlight,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "validation failure",
			err:        &order.ValidationError{Reason: "delivery details are incomplete"},
			wantStatus: http.StatusBadRequest,
			wantError:  "delivery details are incomplete",
		},
		{
			name:       "server rejection surfaces verbatim",
			err:        &order.ServerRejection{Status: http.StatusUnprocessableEntity, Message: "item 'Margherita' is sold out"},
			wantStatus: http.StatusBadGateway,
			wantError:  "item 'Margherita' is sold out",
			retryable:  true,
		},
		{
			name:       "network failure",
			err:        &order.NetworkError{Err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			retryable:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			carts := cart.NewStore()
			submitter := &mockSubmitService{
				submitFn: func(ctx context.Context, session uuid.UUID, slug string) (*order.Snapshot, error) {
					return nil, tt.err
				},
			}
			router := setupCheckoutRouter(carts, submitter)
			sessionID := uuid.New()
			readyCart(t, carts, sessionID, "pizza-palace")

			rr := doSessionRequest(t, router, "POST", "/restaurants/pizza-palace/checkout/submit", nil, sessionID)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rr.Code, tt.wantStatus, rr.Body.String())
			}
			resp := decodeResponse(t, rr)
			if tt.wantError != "" && resp["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", resp["error"], tt.wantError)
			}
			if tt.retryable && resp["retryable"] != true {
				t.Errorf("retryable = %v, want true", resp["retryable"])
			}
		})
	}
}
