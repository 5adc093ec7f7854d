package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PremiumThreshold is the per-token price (USD) at or above which a model is premium.
var PremiumThreshold = decimal.RequireFromString("0.00001")

// IsPremium reports whether any of the price strings reaches PremiumThreshold.
// Unparseable prices are ignored.
func IsPremium(prices ...string) bool {
	for _, p := range prices {
		d, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		if d.GreaterThanOrEqual(PremiumThreshold) {
			return true
		}
	}
	return false
}

// IsPositive reports whether price parses to a value above zero.
func IsPositive(price string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(price))
	return err == nil && d.IsPositive()
}
