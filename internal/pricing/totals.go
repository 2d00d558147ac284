package pricing

import "github.com/shopspring/decimal"

// Line is the pricing view of a cart line.
type Line struct {
	Quantity int32
	Subtotal decimal.Decimal
}

// Summary aggregates the computed cart components.
type Summary struct {
	TotalItems int32
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
}

// LineSubtotal returns unitPrice * qty at money scale.
func LineSubtotal(unitPrice decimal.Decimal, qty int32) decimal.Decimal {
	if qty <= 0 {
		return decimal.Zero
	}
	return Round(unitPrice.Mul(decimal.NewFromInt32(qty)))
}

// Totals sums quantities and line subtotals.
func Totals(lines []Line) Summary {
	sum := Summary{Subtotal: decimal.Zero, Discount: decimal.Zero, Total: decimal.Zero}
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		sum.TotalItems += l.Quantity
		sum.Subtotal = sum.Subtotal.Add(l.Subtotal)
	}
	sum.Total = sum.Subtotal
	return sum
}

// WithDiscount returns a copy of s with the discount clamped to [0, subtotal] and the payable total set.
func (s Summary) WithDiscount(discount decimal.Decimal) Summary {
	s.Discount = Clamp(discount, decimal.Zero, s.Subtotal)
	s.Total = s.Subtotal.Sub(s.Discount)
	return s
}

// Payable returns subtotal minus discount, never negative.
func Payable(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
