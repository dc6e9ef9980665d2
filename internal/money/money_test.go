package money_test

import (
	"testing"

	"github.com/platewise/checkout-api/internal/enum"
	"github.com/platewise/checkout-api/internal/money"
)

func TestCalculateEmptyCart(t *testing.T) {
	got := money.Calculate(nil, money.TipChoice{Mode: enum.TipModeNone})
	want := money.Totals{}
	if got != want {
		t.Errorf("empty cart totals: got %+v, want all zero", got)
	}
}

func TestCalculateKnownFigures(t *testing.T) {
	// $20.00 subtotal, 8.25% service charge, 15% tip.
	lines := []money.Line{{PriceCents: 1000, Quantity: 2}}
	got := money.Calculate(lines, money.TipChoice{Mode: enum.TipModePercent, Percent: 15})

	if got.SubtotalCents != 2000 {
		t.Errorf("subtotal: got %d, want 2000", got.SubtotalCents)
	}
	if got.ServiceChargeCents != 165 {
		t.Errorf("service charge: got %d, want 165", got.ServiceChargeCents)
	}
	if got.TipCents != 300 {
		t.Errorf("tip: got %d, want 300", got.TipCents)
	}
	if got.GrandTotalCents != 2465 {
		t.Errorf("grand total: got %d, want 2465", got.GrandTotalCents)
	}
}

func TestCalculateGrandTotalInvariant(t *testing.T) {
	cases := []struct {
		name  string
		lines []money.Line
		tip   money.TipChoice
	}{
		{"no tip", []money.Line{{PriceCents: 1299, Quantity: 3}}, money.TipChoice{Mode: enum.TipModeNone}},
		{"percent tip", []money.Line{{PriceCents: 777, Quantity: 1}, {PriceCents: 50, Quantity: 7}}, money.TipChoice{Mode: enum.TipModePercent, Percent: 18}},
		{"fixed tip", []money.Line{{PriceCents: 999, Quantity: 2}}, money.TipChoice{Mode: enum.TipModeFixed, Cents: 500}},
		{"single cent", []money.Line{{PriceCents: 1, Quantity: 1}}, money.TipChoice{Mode: enum.TipModePercent, Percent: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := money.Calculate(tc.lines, tc.tip)
			sum := got.SubtotalCents + got.ServiceChargeCents + got.TipCents
			if got.GrandTotalCents != sum {
				t.Errorf("grand total %d != subtotal+service+tip %d", got.GrandTotalCents, sum)
			}
			if got.SubtotalCents < 0 || got.ServiceChargeCents < 0 || got.TipCents < 0 {
				t.Errorf("negative component in %+v", got)
			}
		})
	}
}

func TestCalculateServiceChargeRoundsHalfUp(t *testing.T) {
	// 606 * 0.0825 = 49.995 -> 50; 600 * 0.0825 = 49.5 -> 50; 594 * 0.0825 = 49.005 -> 49.
	cases := []struct {
		subtotal int64
		want     int64
	}{
		{606, 50},
		{600, 50},
		{594, 49},
	}
	for _, tc := range cases {
		got := money.Calculate([]money.Line{{PriceCents: tc.subtotal, Quantity: 1}}, money.TipChoice{Mode: enum.TipModeNone})
		if got.ServiceChargeCents != tc.want {
			t.Errorf("service charge for subtotal %d: got %d, want %d", tc.subtotal, got.ServiceChargeCents, tc.want)
		}
	}
}

func TestCalculateZeroPercentTipMatchesNone(t *testing.T) {
	lines := []money.Line{{PriceCents: 1500, Quantity: 2}}
	withNone := money.Calculate(lines, money.TipChoice{Mode: enum.TipModeNone})
	withZeroPct := money.Calculate(lines, money.TipChoice{Mode: enum.TipModePercent, Percent: 0})
	if withNone != withZeroPct {
		t.Errorf("0%% tip totals %+v differ from no-tip totals %+v", withZeroPct, withNone)
	}
}

func TestCalculateIgnoresInactiveTipField(t *testing.T) {
	lines := []money.Line{{PriceCents: 1000, Quantity: 1}}

	// A stale Cents value must not leak into PERCENT mode, and vice versa.
	pct := money.Calculate(lines, money.TipChoice{Mode: enum.TipModePercent, Percent: 10, Cents: 9999})
	if pct.TipCents != 100 {
		t.Errorf("percent mode tip: got %d, want 100", pct.TipCents)
	}

	fixed := money.Calculate(lines, money.TipChoice{Mode: enum.TipModeFixed, Percent: 50, Cents: 250})
	if fixed.TipCents != 250 {
		t.Errorf("fixed mode tip: got %d, want 250", fixed.TipCents)
	}
}
