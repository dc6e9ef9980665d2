package enum

// ── Checkout steps (sequential, guarded by internal/checkout) ──

const (
	StepMenu         = "MENU"
	StepReview       = "REVIEW"
	StepDelivery     = "DELIVERY"
	StepPayment      = "PAYMENT"
	StepConfirmation = "CONFIRMATION"
)

// ── Tip modes (mutually exclusive on the cart) ──

const (
	TipModeNone    = "NONE"
	TipModePercent = "PERCENT"
	TipModeFixed   = "FIXED"
)

// ── Card brands ──

const (
	CardBrandVisa       = "VISA"
	CardBrandMastercard = "MASTERCARD"
	CardBrandAmex       = "AMEX"
	CardBrandDiscover   = "DISCOVER"
)

// ── WebSocket event types ──

const (
	EventOrderCreated = "order.created"
)

// USStateCodes is the set of valid two-letter delivery state codes:
// the 50 states plus DC.
var USStateCodes = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true,
	"CO": true, "CT": true, "DE": true, "DC": true, "FL": true,
	"GA": true, "HI": true, "ID": true, "IL": true, "IN": true,
	"IA": true, "KS": true, "KY": true, "LA": true, "ME": true,
	"MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true,
	"NJ": true, "NM": true, "NY": true, "NC": true, "ND": true,
	"OH": true, "OK": true, "OR": true, "PA": true, "RI": true,
	"SC": true, "SD": true, "TN": true, "TX": true, "UT": true,
	"VT": true, "VA": true, "WA": true, "WV": true, "WI": true,
	"WY": true,
}
