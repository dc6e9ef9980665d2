// Package checkout enforces the ordering of the checkout flow: a shopper
// cannot reach a later page without the data required by the earlier ones.
package checkout

import (
	"github.com/platewise/checkout-api/internal/cart"
	"github.com/platewise/checkout-api/internal/enum"
)

// Decision is the guard's verdict for one page mount. When Allowed is false,
// RedirectTo names the step the shopper must be sent back to.
type Decision struct {
	Allowed    bool   `json:"allowed"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// ValidStep reports whether s names a checkout step.
func ValidStep(s string) bool {
	switch s {
	case enum.StepMenu, enum.StepReview, enum.StepDelivery,
		enum.StepPayment, enum.StepConfirmation:
		return true
	}
	return false
}

// Evaluate decides whether the given cart state permits the shopper to be on
// the given step. Evaluated on every page mount. The rules are cumulative:
// everything after the menu needs items; payment and confirmation need
// delivery details; confirmation additionally needs payment and billing.
// The delivery page itself never redirects for missing delivery details,
// since it is the page that collects them.
func Evaluate(c *cart.Cart, step string) Decision {
	if step == enum.StepMenu {
		return Decision{Allowed: true}
	}

	if !c.HasItems() {
		return Decision{RedirectTo: enum.StepMenu}
	}

	switch step {
	case enum.StepReview, enum.StepDelivery:
		return Decision{Allowed: true}
	case enum.StepPayment:
		if c.Delivery == nil {
			return Decision{RedirectTo: enum.StepDelivery}
		}
		return Decision{Allowed: true}
	case enum.StepConfirmation:
		if c.Delivery == nil {
			return Decision{RedirectTo: enum.StepDelivery}
		}
		if c.Payment == nil || c.Billing == nil {
			return Decision{RedirectTo: enum.StepPayment}
		}
		return Decision{Allowed: true}
	}

	return Decision{RedirectTo: enum.StepMenu}
}
