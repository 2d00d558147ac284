package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/common"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
	"github.com/noah-isme/toko-ledger/internal/pricing"
)

var (
	// ErrNotFound is returned when no active coupon with the id belongs to the caller.
	ErrNotFound = errors.New("coupon not found")
	// ErrExpired is returned outside the coupon validity window.
	ErrExpired = errors.New("coupon expired or not yet valid")
	// ErrExhausted indicates used count reached the usage limit.
	ErrExhausted = errors.New("coupon usage limit reached")
	// ErrMinOrderNotMet indicates the cart subtotal is below the coupon minimum.
	ErrMinOrderNotMet = errors.New("coupon minimum order amount not met")
)

// Kind is the closed set of discount types.
type Kind string

const (
	KindPercent     Kind = "PERCENT"
	KindFixedAmount Kind = "FIXED_AMOUNT"
)

// Rule captures the runtime constraints of a coupon.
type Rule struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Code       string
	Kind       Kind
	Value      decimal.Decimal
	MinOrder   decimal.Decimal
	ValidFrom  time.Time
	ValidTo    time.Time
	UsageLimit int32
	UsedCount  int32
	Active     bool
}

// RuleFromModel converts the generated model into a Rule.
func RuleFromModel(c dbgen.Coupon) Rule {
	rule := Rule{
		ID:         common.FromPGUUID(c.ID),
		OwnerID:    common.FromPGUUID(c.UserID),
		Code:       c.Code,
		Kind:       Kind(c.DiscountKind),
		Value:      c.DiscountValue,
		MinOrder:   c.MinOrderAmount,
		UsageLimit: c.UsageLimit,
		UsedCount:  c.UsedCount,
		Active:     c.IsActive,
	}
	if c.ValidFrom.Valid {
		rule.ValidFrom = c.ValidFrom.Time
	}
	if c.ValidTo.Valid {
		rule.ValidTo = c.ValidTo.Time
	}
	return rule
}

// Usable reports whether userID may use the coupon at all.
func (r Rule) Usable(userID uuid.UUID) error {
	if !r.Active || r.OwnerID != userID {
		return ErrNotFound
	}
	return nil
}

// Validate checks the validity window and usage counter at now. Both window bounds are inclusive.
func (r Rule) Validate(now time.Time) error {
	if !r.ValidFrom.IsZero() && now.Before(r.ValidFrom) {
		return ErrExpired
	}
	if !r.ValidTo.IsZero() && now.After(r.ValidTo) {
		return ErrExpired
	}
	if r.UsedCount >= r.UsageLimit {
		return ErrExhausted
	}
	return nil
}

// CheckMinOrder fails when subtotal is below the coupon minimum.
func (r Rule) CheckMinOrder(subtotal decimal.Decimal) error {
	if subtotal.LessThan(r.MinOrder) {
		return ErrMinOrderNotMet
	}
	return nil
}

// Compute returns the discount for subtotal, clamped to [0, subtotal].
func Compute(subtotal decimal.Decimal, r Rule) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	var discount decimal.Decimal
	switch r.Kind {
	case KindPercent:
		discount = pricing.Round(subtotal.Mul(r.Value).Div(decimal.NewFromInt(100)))
	case KindFixedAmount:
		discount = r.Value
	default:
		return decimal.Zero
	}
	return pricing.Clamp(discount, decimal.Zero, subtotal)
}

// Discount is Compute for an optional rule; no coupon means no discount.
func Discount(subtotal decimal.Decimal, r *Rule) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return Compute(subtotal, *r)
}
