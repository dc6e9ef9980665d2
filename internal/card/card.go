// Package card validates payment card numbers locally. There is no gateway
// integration; a card that passes here is only "plausible", never charged.
package card

import (
	"regexp"

	"github.com/platewise/checkout-api/internal/enum"
)

// brandRule pairs the required digit length with the leading-digit prefix
// pattern for one card brand.
type brandRule struct {
	length int
	prefix *regexp.Regexp
}

var brandRules = map[string]brandRule{
	enum.CardBrandVisa:       {length: 16, prefix: regexp.MustCompile(`^4`)},
	enum.CardBrandMastercard: {length: 16, prefix: regexp.MustCompile(`^5[1-5]`)},
	enum.CardBrandAmex:       {length: 15, prefix: regexp.MustCompile(`^3[47]`)},
	enum.CardBrandDiscover:   {length: 16, prefix: regexp.MustCompile(`^6(011|5)`)},
}

var (
	expiryRe   = regexp.MustCompile(`^(0[1-9]|1[0-2])\/?([0-9]{2})$`)
	securityRe = regexp.MustCompile(`^[0-9]{3}$`)
	digitsRe   = regexp.MustCompile(`^[0-9]+$`)
)

// Validate reports whether digits is a well-formed number for the given
// brand: correct length, correct network prefix, and a passing Luhn checksum.
// digits must contain only decimal digits (no spaces or separators).
func Validate(brand, digits string) bool {
	rule, ok := brandRules[brand]
	if !ok {
		return false
	}
	if len(digits) != rule.length || !digitsRe.MatchString(digits) {
		return false
	}
	if !rule.prefix.MatchString(digits) {
		return false
	}
	return luhn(digits)
}

// DetectBrand returns the brand whose prefix and length match digits, or ""
// if no supported brand matches.
func DetectBrand(digits string) string {
	for _, brand := range []string{
		enum.CardBrandAmex,
		enum.CardBrandDiscover,
		enum.CardBrandMastercard,
		enum.CardBrandVisa,
	} {
		rule := brandRules[brand]
		if len(digits) == rule.length && rule.prefix.MatchString(digits) {
			return brand
		}
	}
	return ""
}

// ValidExpiry reports whether s is a two-digit month (01-12) followed by a
// two-digit year, with an optional slash separator ("0527" or "05/27").
func ValidExpiry(s string) bool {
	return expiryRe.MatchString(s)
}

// ValidSecurityCode reports whether s is exactly three digits.
func ValidSecurityCode(s string) bool {
	return securityRe.MatchString(s)
}

// LastFour returns the last four digits of a card number for display.
func LastFour(digits string) string {
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// luhn runs the standard mod-10 checksum: from the rightmost digit, double
// every second digit, subtract 9 from doubled values over 9, sum everything;
// valid iff the sum is divisible by 10.
func luhn(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
