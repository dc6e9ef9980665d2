package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/platewise/checkout-api/internal/cart"
	"github.com/platewise/checkout-api/internal/checkout"
	"github.com/platewise/checkout-api/internal/enum"
	"github.com/platewise/checkout-api/internal/order"
)

// SubmitService defines the order submission method needed by the handler.
// Satisfied by *order.Submitter; narrow interface for testability.
type SubmitService interface {
	Submit(ctx context.Context, session uuid.UUID, slug string) (*order.Snapshot, error)
}

// CheckoutHandler handles checkout step guarding and order submission.
type CheckoutHandler struct {
	carts     *cart.Store
	submitter SubmitService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(carts *cart.Store, submitter SubmitService) *CheckoutHandler {
	return &CheckoutHandler{carts: carts, submitter: submitter}
}

// RegisterRoutes registers checkout endpoints on the given Chi router. The
// router is mounted under /restaurants/{slug}/checkout.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{step}", h.Step)
	r.Post("/submit", h.Submit)
}

// Step handles GET /restaurants/{slug}/checkout/{step}. The frontend calls
// this on every checkout page mount and follows redirect_to when the page
// is not allowed yet.
func (h *CheckoutHandler) Step(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")
	step := chi.URLParam(r, "step")

	if !checkout.ValidStep(step) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown checkout step"})
		return
	}

	c, _ := h.carts.Get(sessionID, slug)
	writeJSON(w, http.StatusOK, checkout.Evaluate(c, step))
}

type submitErrorResponse struct {
	Error      string `json:"error"`
	RedirectTo string `json:"redirect_to,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`
}

// Submit handles POST /restaurants/{slug}/checkout/submit. The guard runs
// first: a cart that cannot reach the confirmation step is redirected
// instead of submitted.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionID(w, r)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")

	c, _ := h.carts.Get(sessionID, slug)
	if d := checkout.Evaluate(c, enum.StepConfirmation); !d.Allowed {
		writeJSON(w, http.StatusConflict, submitErrorResponse{
			Error:      "checkout is not complete",
			RedirectTo: d.RedirectTo,
		})
		return
	}

	snap, err := h.submitter.Submit(r.Context(), sessionID, slug)
	if err != nil {
		h.writeSubmitError(w, slug, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *CheckoutHandler) writeSubmitError(w http.ResponseWriter, slug string, err error) {
	var vErr *order.ValidationError
	var rejErr *order.ServerRejection
	var netErr *order.NetworkError

	switch {
	case errors.Is(err, order.ErrSubmissionInFlight):
		writeJSON(w, http.StatusConflict, submitErrorResponse{
			Error: "an order submission is already in progress",
		})
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, submitErrorResponse{Error: vErr.Reason})
	case errors.As(err, &rejErr):
		// The order API's message is surfaced verbatim so the shopper sees
		// the actual reason, e.g. an item that just sold out.
		log.Printf("ERROR: order rejected for %s: %v", slug, err)
		writeJSON(w, http.StatusBadGateway, submitErrorResponse{
			Error:     rejErr.Message,
			Retryable: true,
		})
	case errors.As(err, &netErr):
		log.Printf("ERROR: order submit for %s: %v", slug, err)
		writeJSON(w, http.StatusBadGateway, submitErrorResponse{
			Error:     "could not reach the ordering service, please try again",
			Retryable: true,
		})
	default:
		log.Printf("ERROR: order submit for %s: %v", slug, err)
		writeJSON(w, http.StatusInternalServerError, submitErrorResponse{Error: "internal server error"})
	}
}
