package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for monetary values.
const Scale int32 = 2

// Zero is the zero amount.
var Zero = decimal.Zero

// Round rounds to Scale digits, half away from zero (half-up for non-negative amounts).
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// HasScale reports whether d carries no more than Scale fractional digits.
func HasScale(d decimal.Decimal) bool {
	return d.Equal(Round(d))
}

// Parse reads a decimal string and rejects values finer than Scale.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !HasScale(d) {
		return decimal.Zero, fmt.Errorf("amount %q exceeds %d decimal places", s, Scale)
	}
	return d, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}
