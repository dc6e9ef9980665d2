// Package money computes cart totals in integer cents. Nothing downstream of
// this package performs floating-point currency arithmetic.
package money

import "github.com/platewise/checkout-api/internal/enum"

// ServiceChargeBps is the fixed service charge applied to every subtotal,
// in basis points (8.25%). Single source of truth; never duplicate the rate.
const ServiceChargeBps = 825

// MaxFixedTipCents caps fixed-amount tips ($500.00). Enforced at input time.
const MaxFixedTipCents = 50000

// Line is one cart line item as seen by the calculator.
type Line struct {
	PriceCents int64
	Quantity   int64
}

// TipChoice is the committed tip selection. Percent is honored only in
// PERCENT mode and Cents only in FIXED mode; the other field is ignored.
type TipChoice struct {
	Mode    string
	Percent int64
	Cents   int64
}

// Totals holds the four derived monetary figures, all non-negative cents.
// Invariant: GrandTotalCents == SubtotalCents + ServiceChargeCents + TipCents.
type Totals struct {
	SubtotalCents      int64 `json:"subtotal_cents"`
	ServiceChargeCents int64 `json:"service_charge_cents"`
	TipCents           int64 `json:"tip_cents"`
	GrandTotalCents    int64 `json:"grand_total_cents"`
}

// Calculate derives totals from line items and the tip selection.
// An empty or nil line slice yields all-zero totals, the safe default before
// any items are added.
func Calculate(lines []Line, tip TipChoice) Totals {
	var subtotal int64
	for _, l := range lines {
		subtotal += l.PriceCents * l.Quantity
	}

	service := roundHalfUpBps(subtotal, ServiceChargeBps)

	var tipCents int64
	switch tip.Mode {
	case enum.TipModePercent:
		tipCents = roundHalfUpPercent(subtotal, tip.Percent)
	case enum.TipModeFixed:
		tipCents = tip.Cents
	}
	if tipCents < 0 {
		tipCents = 0
	}

	return Totals{
		SubtotalCents:      subtotal,
		ServiceChargeCents: service,
		TipCents:           tipCents,
		GrandTotalCents:    subtotal + service + tipCents,
	}
}

// roundHalfUpBps computes round(amount * bps / 10000) with half cents
// rounding up, in pure integer arithmetic.
func roundHalfUpBps(amount, bps int64) int64 {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return (amount*bps + 5000) / 10000
}

// roundHalfUpPercent computes round(amount * pct / 100) the same way.
func roundHalfUpPercent(amount, pct int64) int64 {
	if amount <= 0 || pct <= 0 {
		return 0
	}
	return (amount*pct + 50) / 100
}
