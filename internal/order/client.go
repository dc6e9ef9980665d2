package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/platewise/checkout-api/internal/cart"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the wire payload for the downstream order-creation
// endpoint. Monetary amounts cross this boundary as decimal dollars; the
// full card number and security code never appear here.
type CreateOrderRequest struct {
	RestaurantID int64              `json:"restaurant_id"`
	Items        []CreateOrderItem  `json:"items"`
	Tip          json.Number        `json:"tip"`
	Delivery     DeliveryFields     `json:"delivery"`
	Payment      PaymentFields      `json:"payment"`
	Billing      AddressFields      `json:"billing"`
}

// CreateOrderItem is one ordered line on the wire.
type CreateOrderItem struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int64 `json:"quantity"`
}

// DeliveryFields carries the delivery address and contact details.
type DeliveryFields struct {
	AddressFields
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}

// AddressFields is a street address on the wire.
type AddressFields struct {
	BuildingNumber string `json:"building_number"`
	Street         string `json:"street"`
	Apartment      string `json:"apartment,omitempty"`
	City           string `json:"city"`
	State          string `json:"state"`
	Zip            string `json:"zip"`
}

// PaymentFields carries display-safe card data only.
type PaymentFields struct {
	Brand          string `json:"brand"`
	LastFour       string `json:"last_four"`
	CardholderName string `json:"cardholder_name"`
	Expiry         string `json:"expiry"`
}

// CreateOrderResponse is the order API's synchronous success response. Total
// is the authoritative charged amount in decimal dollars.
type CreateOrderResponse struct {
	OrderNumber           string      `json:"order_number"`
	EstimatedDeliveryTime string      `json:"estimated_delivery_time"`
	Total                 json.Number `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// BuildRequest converts a complete cart into the wire payload. It fails with
// a ValidationError before any network I/O if the cart is not submittable:
// missing items, missing checkout data, or a non-positive item identifier.
func BuildRequest(c *cart.Cart) (CreateOrderRequest, error) {
	if !c.HasItems() {
		return CreateOrderRequest{}, &ValidationError{Reason: "cart has no items"}
	}
	if c.Delivery == nil {
		return CreateOrderRequest{}, &ValidationError{Reason: "delivery details missing"}
	}
	if c.Payment == nil || c.Billing == nil {
		return CreateOrderRequest{}, &ValidationError{Reason: "payment details missing"}
	}
	if c.Restaurant.ID <= 0 {
		return CreateOrderRequest{}, &ValidationError{Reason: "restaurant id is not submittable"}
	}

	items := make([]CreateOrderItem, 0, len(c.Items))
	for _, id := range c.SortedItemIDs() {
		it := c.Items[id]
		if it.ID <= 0 {
			return CreateOrderRequest{}, &ValidationError{
				Reason: fmt.Sprintf("item %q has a malformed id", it.Name),
			}
		}
		items = append(items, CreateOrderItem{MenuItemID: it.ID, Quantity: it.Quantity})
	}

	// Tip leaves the cents world only here, at the wire boundary.
	tipDollars := decimal.NewFromInt(c.Totals().TipCents).Div(decimal.NewFromInt(100))

	return CreateOrderRequest{
		RestaurantID: c.Restaurant.ID,
		Items:        items,
		Tip:          json.Number(tipDollars.StringFixed(2)),
		Delivery: DeliveryFields{
			AddressFields: toAddressFields(c.Delivery.Address),
			ContactName:   c.Delivery.ContactName,
			ContactPhone:  c.Delivery.ContactPhone,
		},
		Payment: PaymentFields{
			Brand:          c.Payment.Brand,
			LastFour:       c.Payment.LastFour,
			CardholderName: c.Payment.FirstName + " " + c.Payment.LastName,
			Expiry:         c.Payment.Expiry,
		},
		Billing: toAddressFields(*c.Billing),
	}, nil
}

func toAddressFields(a cart.Address) AddressFields {
	return AddressFields{
		BuildingNumber: a.BuildingNumber,
		Street:         a.Street,
		Apartment:      a.Apartment,
		City:           a.City,
		State:          a.State,
		Zip:            a.Zip,
	}
}

// Client calls the downstream order-creation HTTP endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an order API client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Create submits one order. Transport failures come back as *NetworkError,
// non-2xx responses as *ServerRejection carrying the server's message
// verbatim.
func (c *Client) Create(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ValidationError{Reason: "encode payload: " + err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerRejection{
			Status:  resp.StatusCode,
			Message: readErrorMessage(resp.Body),
		}
	}

	var out CreateOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}

// readErrorMessage extracts the server's error string, falling back to the
// raw body when the response is not the expected JSON shape.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "order service error"
	}
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return string(bytes.TrimSpace(raw))
}
