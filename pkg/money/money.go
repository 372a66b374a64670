package money

import "github.com/shopspring/decimal"

// Round2 rounds a monetary amount half-up to two decimal places. Every value
// crossing a component boundary goes through this; unrounded intermediates
// never escape a calculation.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FromString parses a decimal amount, returning zero on malformed input.
// Intended for configuration values validated elsewhere.
func FromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Zero is a convenience re-export for call sites that read better with it.
var Zero = decimal.Zero
