package cart

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/toko-ledger/internal/coupon"
	"github.com/noah-isme/toko-ledger/internal/db"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
)

// Querier captures the database methods required by the cart service.
type Querier interface {
	coupon.Reader
	GetCouponByID(ctx context.Context, id pgtype.UUID) (dbgen.Coupon, error)

	EnsureCart(ctx context.Context, userID pgtype.UUID) error
	GetCartByUser(ctx context.Context, userID pgtype.UUID) (dbgen.Cart, error)
	LockCartByUser(ctx context.Context, userID pgtype.UUID) (dbgen.Cart, error)
	UpdateCartTotals(ctx context.Context, arg dbgen.UpdateCartTotalsParams) (int64, error)

	ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]dbgen.CartItem, error)
	GetCartItemByID(ctx context.Context, id pgtype.UUID) (dbgen.CartItem, error)
	FindCartItemByProduct(ctx context.Context, arg dbgen.FindCartItemByProductParams) (dbgen.CartItem, error)
	CreateCartItem(ctx context.Context, arg dbgen.CreateCartItemParams) (dbgen.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, arg dbgen.UpdateCartItemQuantityParams) (dbgen.CartItem, error)
	DeleteCartItem(ctx context.Context, arg dbgen.DeleteCartItemParams) (int64, error)
	DeleteCartItems(ctx context.Context, cartID pgtype.UUID) error
}

// Store exposes cart queries and a unit of work.
type Store interface {
	Queries() Querier
	InTx(ctx context.Context, fn func(q Querier) error) error
}

type pgStore struct {
	db *db.Store
}

// NewPGStore adapts the shared Postgres store to the cart Store contract.
func NewPGStore(store *db.Store) Store {
	return pgStore{db: store}
}

func (p pgStore) Queries() Querier { return p.db.Q }

func (p pgStore) InTx(ctx context.Context, fn func(q Querier) error) error {
	return p.db.InTx(ctx, func(q *dbgen.Queries) error { return fn(q) })
}
