package coupon

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
	"github.com/noah-isme/toko-ledger/internal/pricing"
)

func TestComputePercent(t *testing.T) {
	rule := Rule{Kind: KindPercent, Value: pricing.MustParse("10")}
	discount := Compute(pricing.MustParse("100000"), rule)
	if !discount.Equal(pricing.MustParse("10000")) {
		t.Fatalf("expected 10000 discount, got %s", discount)
	}
}

func TestComputePercentRoundsHalfUp(t *testing.T) {
	rule := Rule{Kind: KindPercent, Value: pricing.MustParse("12.5")}
	// 0.125 * 10.01 = 1.25125
	require.Equal(t, "1.25", Compute(pricing.MustParse("10.01"), rule).StringFixed(2))
	// 0.125 * 0.2 = 0.025
	require.Equal(t, "0.03", Compute(pricing.MustParse("0.20"), rule).StringFixed(2))
}

func TestComputeFixedClampedToSubtotal(t *testing.T) {
	rule := Rule{Kind: KindFixedAmount, Value: pricing.MustParse("75000")}
	require.True(t, Compute(pricing.MustParse("50000"), rule).Equal(pricing.MustParse("50000")))
	require.True(t, Compute(pricing.MustParse("100000"), rule).Equal(pricing.MustParse("75000")))
	require.True(t, Compute(decimal.Zero, rule).IsZero())
}

func TestDiscountNeverOutsideBounds(t *testing.T) {
	rules := []Rule{
		{Kind: KindPercent, Value: pricing.MustParse("150")},
		{Kind: KindPercent, Value: pricing.MustParse("0")},
		{Kind: KindPercent, Value: pricing.MustParse("33.33")},
		{Kind: KindFixedAmount, Value: pricing.MustParse("-10")},
		{Kind: KindFixedAmount, Value: pricing.MustParse("999999")},
		{Kind: Kind("UNKNOWN"), Value: pricing.MustParse("10")},
	}
	subtotals := []string{"0", "0.01", "1", "49999.99", "100000"}
	for _, r := range rules {
		for _, raw := range subtotals {
			s := pricing.MustParse(raw)
			d := Compute(s, r)
			require.False(t, d.IsNegative(), "kind=%s value=%s subtotal=%s", r.Kind, r.Value, raw)
			require.True(t, d.LessThanOrEqual(s), "kind=%s value=%s subtotal=%s", r.Kind, r.Value, raw)
		}
	}
	require.True(t, Discount(pricing.MustParse("100"), nil).IsZero())
}

func TestValidateWindowAndUsage(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rule := Rule{ValidFrom: now.Add(-time.Hour), ValidTo: now.Add(time.Hour), UsageLimit: 1}
	require.NoError(t, rule.Validate(now))
	require.NoError(t, rule.Validate(rule.ValidTo))
	require.ErrorIs(t, rule.Validate(now.Add(2*time.Hour)), ErrExpired)
	require.ErrorIs(t, rule.Validate(now.Add(-2*time.Hour)), ErrExpired)

	rule.UsedCount = 1
	require.ErrorIs(t, rule.Validate(now), ErrExhausted)
}

func TestUsableRequiresOwnerAndActive(t *testing.T) {
	owner := uuid.New()
	rule := Rule{OwnerID: owner, Active: true}
	require.NoError(t, rule.Usable(owner))
	require.ErrorIs(t, rule.Usable(uuid.New()), ErrNotFound)
	rule.Active = false
	require.ErrorIs(t, rule.Usable(owner), ErrNotFound)
}

func TestCheckMinOrder(t *testing.T) {
	rule := Rule{MinOrder: pricing.MustParse("50000")}
	require.NoError(t, rule.CheckMinOrder(pricing.MustParse("50000")))
	require.ErrorIs(t, rule.CheckMinOrder(pricing.MustParse("49999.99")), ErrMinOrderNotMet)
}

func TestRuleFromModel(t *testing.T) {
	id, owner := uuid.New(), uuid.New()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rule := RuleFromModel(dbgen.Coupon{
		ID:             pgtype.UUID{Bytes: id, Valid: true},
		UserID:         pgtype.UUID{Bytes: owner, Valid: true},
		Code:           "HEMAT10",
		DiscountKind:   dbgen.DiscountKindPERCENT,
		DiscountValue:  pricing.MustParse("10"),
		MinOrderAmount: pricing.MustParse("50000"),
		ValidFrom:      pgtype.Timestamptz{Time: from, Valid: true},
		UsageLimit:     3,
		UsedCount:      1,
		IsActive:       true,
	})
	require.Equal(t, id, rule.ID)
	require.Equal(t, owner, rule.OwnerID)
	require.Equal(t, KindPercent, rule.Kind)
	require.Equal(t, from, rule.ValidFrom)
	require.True(t, rule.ValidTo.IsZero())
	require.Equal(t, int32(3), rule.UsageLimit)
}
