package order_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/platewise/checkout-api/internal/cart"
	"github.com/platewise/checkout-api/internal/enum"
	"github.com/platewise/checkout-api/internal/order"
)

// completeCart returns a cart ready for submission.
func completeCart() *cart.Cart {
	return &cart.Cart{
		Restaurant: cart.Restaurant{ID: 7, Slug: "lucky-dragon", Name: "Lucky Dragon"},
		Items: map[int64]*cart.LineItem{
			1: {ID: 1, Name: "Noodles", PriceCents: 1000, Quantity: 2},
			2: {ID: 2, Name: "Dumplings", PriceCents: 899, Quantity: 1},
		},
		Tip: cart.Tip{Mode: enum.TipModePercent, Percent: 15},
		Delivery: &cart.Delivery{
			Address: cart.Address{
				BuildingNumber: "12", Street: "Main St", City: "Springfield",
				State: "IL", Zip: "62704",
			},
			ContactName:  "Jo Smith",
			ContactPhone: "2175551234",
		},
		Payment: &cart.PaymentProfile{
			Brand: enum.CardBrandVisa, LastFour: "4242",
			FirstName: "Jo", LastName: "Smith", Expiry: "0530",
		},
		Billing: &cart.Address{
			BuildingNumber: "12", Street: "Main St", City: "Springfield",
			State: "IL", Zip: "62704",
		},
	}
}

func TestBuildRequest(t *testing.T) {
	c := completeCart()
	req, err := order.BuildRequest(c)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}

	if req.RestaurantID != 7 {
		t.Errorf("restaurant id: got %d, want 7", req.RestaurantID)
	}
	if len(req.Items) != 2 {
		t.Fatalf("items: got %d, want 2", len(req.Items))
	}
	if req.Items[0].MenuItemID != 1 || req.Items[0].Quantity != 2 {
		t.Errorf("item[0]: got %+v", req.Items[0])
	}

	// Tip: subtotal 2899, 15% -> 435 cents -> "4.35" dollars on the wire.
	if string(req.Tip) != "4.35" {
		t.Errorf("tip dollars: got %s, want 4.35", req.Tip)
	}

	if req.Payment.CardholderName != "Jo Smith" {
		t.Errorf("cardholder: got %q", req.Payment.CardholderName)
	}
	if req.Payment.LastFour != "4242" {
		t.Errorf("last four: got %q", req.Payment.LastFour)
	}
}

func TestBuildRequestValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *cart.Cart)
	}{
		{"empty items", func(c *cart.Cart) { c.Items = map[int64]*cart.LineItem{} }},
		{"missing delivery", func(c *cart.Cart) { c.Delivery = nil }},
		{"missing payment", func(c *cart.Cart) { c.Payment = nil }},
		{"missing billing", func(c *cart.Cart) { c.Billing = nil }},
		{"malformed item id", func(c *cart.Cart) {
			c.Items[0] = &cart.LineItem{ID: 0, Name: "Ghost", PriceCents: 100, Quantity: 1}
		}},
		{"malformed restaurant id", func(c *cart.Cart) { c.Restaurant.ID = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := completeCart()
			tc.mutate(c)
			_, err := order.BuildRequest(c)
			var ve *order.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestClientCreateSuccess(t *testing.T) {
	var received order.CreateOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"order_number":            "PW-1042",
			"estimated_delivery_time": "45 minutes",
			"total":                   33.33,
		})
	}))
	defer srv.Close()

	client := order.NewClient(srv.URL)
	req, _ := order.BuildRequest(completeCart())
	resp, err := client.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.OrderNumber != "PW-1042" {
		t.Errorf("order number: got %q", resp.OrderNumber)
	}
	if resp.EstimatedDeliveryTime != "45 minutes" {
		t.Errorf("estimate: got %q", resp.EstimatedDeliveryTime)
	}
	if resp.Total.String() != "33.33" {
		t.Errorf("total: got %s", resp.Total)
	}
	if received.RestaurantID != 7 {
		t.Errorf("server saw restaurant id %d", received.RestaurantID)
	}
}

func TestClientCreateServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "restaurant is closed"})
	}))
	defer srv.Close()

	client := order.NewClient(srv.URL)
	req, _ := order.BuildRequest(completeCart())
	_, err := client.Create(context.Background(), req)

	var sr *order.ServerRejection
	if !errors.As(err, &sr) {
		t.Fatalf("got %v, want ServerRejection", err)
	}
	if sr.Status != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d", sr.Status)
	}
	if sr.Message != "restaurant is closed" {
		t.Errorf("message not surfaced verbatim: got %q", sr.Message)
	}
	if !order.Retryable(err) {
		t.Error("server rejection should be retryable")
	}
}

func TestClientCreateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := order.NewClient(srv.URL)
	req, _ := order.BuildRequest(completeCart())
	_, err := client.Create(context.Background(), req)

	var ne *order.NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("got %v, want NetworkError", err)
	}
	if !order.Retryable(err) {
		t.Error("network error should be retryable")
	}
}

func TestRetryableValidation(t *testing.T) {
	if order.Retryable(&order.ValidationError{Reason: "bad"}) {
		t.Error("validation errors are not retryable")
	}
	if order.Retryable(order.ErrSubmissionInFlight) {
		t.Error("in-flight marker is not retryable")
	}
}
