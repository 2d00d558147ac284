package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/common"
	"github.com/noah-isme/toko-ledger/internal/db"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
)

// Reader is the lookup used to resolve a coupon for its owner.
type Reader interface {
	GetActiveCouponForUser(ctx context.Context, arg dbgen.GetActiveCouponForUserParams) (dbgen.Coupon, error)
}

// Querier captures the database methods required by the coupon service.
type Querier interface {
	Reader
	GetCouponByIDForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.Coupon, error)
	GetCouponUsageByOrder(ctx context.Context, arg dbgen.GetCouponUsageByOrderParams) (dbgen.CouponUsage, error)
	InsertCouponUsage(ctx context.Context, arg dbgen.InsertCouponUsageParams) error
	IncrementCouponUsedCount(ctx context.Context, id pgtype.UUID) (int64, error)
}

// Store runs coupon work inside a unit of work.
type Store interface {
	Queries() Querier
	InTx(ctx context.Context, fn func(q Querier) error) error
}

// Evaluation describes a dry-run of a coupon against a subtotal.
type Evaluation struct {
	CouponID uuid.UUID       `json:"coupon_id"`
	Code     string          `json:"code"`
	Kind     Kind            `json:"kind"`
	Discount decimal.Decimal `json:"discount"`
}

// Service evaluates coupons and settles their usage once an order is paid.
type Service struct {
	Store Store
	Now   func() time.Time
}

// Load returns the rule for an active coupon owned by userID.
func Load(ctx context.Context, q Reader, couponID, userID uuid.UUID) (Rule, error) {
	c, err := q.GetActiveCouponForUser(ctx, dbgen.GetActiveCouponForUserParams{
		ID:     common.PGUUID(couponID),
		UserID: common.PGUUID(userID),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, ErrNotFound
		}
		return Rule{}, err
	}
	rule := RuleFromModel(c)
	if err := rule.Usable(userID); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// Evaluate validates the coupon for userID and computes the discount on subtotal without mutating state.
func (s *Service) Evaluate(ctx context.Context, couponID, userID uuid.UUID, subtotal decimal.Decimal) (Evaluation, error) {
	if s == nil || s.Store == nil {
		return Evaluation{}, errors.New("coupon service not configured")
	}
	rule, err := Load(ctx, s.Store.Queries(), couponID, userID)
	if err != nil {
		return Evaluation{}, err
	}
	if err := rule.Validate(s.now()); err != nil {
		return Evaluation{}, err
	}
	if err := rule.CheckMinOrder(subtotal); err != nil {
		return Evaluation{}, err
	}
	return Evaluation{CouponID: rule.ID, Code: rule.Code, Kind: rule.Kind, Discount: Compute(subtotal, rule)}, nil
}

// Settle records coupon usage for a paid order. Repeated calls for the same order are no-ops.
// The used counter is incremented only while it stays within the usage limit.
func (s *Service) Settle(ctx context.Context, couponID, orderID, userID uuid.UUID, amount decimal.Decimal) error {
	if s == nil || s.Store == nil {
		return errors.New("coupon service not configured")
	}
	if couponID == uuid.Nil || orderID == uuid.Nil {
		return fmt.Errorf("coupon and order ids are required: %w", ErrNotFound)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return s.Store.InTx(ctx, func(q Querier) error {
		c, err := q.GetCouponByIDForUpdate(ctx, common.PGUUID(couponID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if common.FromPGUUID(c.UserID) != userID {
			return ErrNotFound
		}
		_, err = q.GetCouponUsageByOrder(ctx, dbgen.GetCouponUsageByOrderParams{CouponID: c.ID, OrderID: common.PGUUID(orderID)})
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		rows, err := q.IncrementCouponUsedCount(ctx, c.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrExhausted
		}
		err = q.InsertCouponUsage(ctx, dbgen.InsertCouponUsageParams{
			CouponID: c.ID,
			OrderID:  common.PGUUID(orderID),
			UserID:   common.PGUUID(userID),
			Amount:   amount,
		})
		return err
	})
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type pgStore struct {
	db *db.Store
}

// NewPGStore adapts the shared Postgres store to the coupon Store contract.
func NewPGStore(store *db.Store) Store {
	return pgStore{db: store}
}

func (p pgStore) Queries() Querier { return p.db.Q }

func (p pgStore) InTx(ctx context.Context, fn func(q Querier) error) error {
	return p.db.InTx(ctx, func(q *dbgen.Queries) error { return fn(q) })
}
