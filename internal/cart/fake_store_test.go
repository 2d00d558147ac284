package cart

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/common"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
)

type memQueries struct {
	carts   map[uuid.UUID]dbgen.Cart // keyed by user id
	items   map[uuid.UUID]dbgen.CartItem
	coupons map[uuid.UUID]dbgen.Coupon
	seq     int64

	// conflicts makes the next N UpdateCartTotals calls report a stale version.
	conflicts int
	updates   int
}

func newMemQueries() *memQueries {
	return &memQueries{
		carts:   map[uuid.UUID]dbgen.Cart{},
		items:   map[uuid.UUID]dbgen.CartItem{},
		coupons: map[uuid.UUID]dbgen.Coupon{},
	}
}

func (m *memQueries) snapshot() *memQueries {
	return &memQueries{
		carts:     maps.Clone(m.carts),
		items:     maps.Clone(m.items),
		coupons:   maps.Clone(m.coupons),
		seq:       m.seq,
		conflicts: m.conflicts,
		updates:   m.updates,
	}
}

func (m *memQueries) restore(from *memQueries) {
	m.carts, m.items, m.coupons, m.seq = from.carts, from.items, from.coupons, from.seq
}

func (m *memQueries) stamp() pgtype.Timestamptz {
	m.seq++
	return pgtype.Timestamptz{Time: time.Unix(1700000000+m.seq, 0).UTC(), Valid: true}
}

func (m *memQueries) GetActiveCouponForUser(_ context.Context, arg dbgen.GetActiveCouponForUserParams) (dbgen.Coupon, error) {
	c, ok := m.coupons[common.FromPGUUID(arg.ID)]
	if !ok || !c.IsActive || c.UserID != arg.UserID {
		return dbgen.Coupon{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *memQueries) GetCouponByID(_ context.Context, id pgtype.UUID) (dbgen.Coupon, error) {
	c, ok := m.coupons[common.FromPGUUID(id)]
	if !ok {
		return dbgen.Coupon{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *memQueries) EnsureCart(_ context.Context, userID pgtype.UUID) error {
	uid := common.FromPGUUID(userID)
	if _, ok := m.carts[uid]; ok {
		return nil
	}
	now := m.stamp()
	m.carts[uid] = dbgen.Cart{
		ID:        common.PGUUID(uuid.New()),
		UserID:    userID,
		Subtotal:  decimal.Zero,
		Discount:  decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (m *memQueries) GetCartByUser(_ context.Context, userID pgtype.UUID) (dbgen.Cart, error) {
	c, ok := m.carts[common.FromPGUUID(userID)]
	if !ok {
		return dbgen.Cart{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *memQueries) LockCartByUser(ctx context.Context, userID pgtype.UUID) (dbgen.Cart, error) {
	return m.GetCartByUser(ctx, userID)
}

func (m *memQueries) UpdateCartTotals(_ context.Context, arg dbgen.UpdateCartTotalsParams) (int64, error) {
	m.updates++
	if m.conflicts > 0 {
		m.conflicts--
		return 0, nil
	}
	for uid, c := range m.carts {
		if c.ID != arg.ID {
			continue
		}
		if c.Version != arg.Version {
			return 0, nil
		}
		c.TotalItems = arg.TotalItems
		c.Subtotal = arg.Subtotal
		c.CouponID = arg.CouponID
		c.Discount = arg.Discount
		c.Version++
		c.UpdatedAt = m.stamp()
		m.carts[uid] = c
		return 1, nil
	}
	return 0, nil
}

func (m *memQueries) ListCartItems(_ context.Context, cartID pgtype.UUID) ([]dbgen.CartItem, error) {
	var out []dbgen.CartItem
	for _, it := range m.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Time.Before(out[j].CreatedAt.Time) })
	return out, nil
}

func (m *memQueries) GetCartItemByID(_ context.Context, id pgtype.UUID) (dbgen.CartItem, error) {
	it, ok := m.items[common.FromPGUUID(id)]
	if !ok {
		return dbgen.CartItem{}, pgx.ErrNoRows
	}
	return it, nil
}

func (m *memQueries) FindCartItemByProduct(_ context.Context, arg dbgen.FindCartItemByProductParams) (dbgen.CartItem, error) {
	for _, it := range m.items {
		if it.CartID == arg.CartID && it.ProductID == arg.ProductID {
			return it, nil
		}
	}
	return dbgen.CartItem{}, pgx.ErrNoRows
}

func (m *memQueries) CreateCartItem(_ context.Context, arg dbgen.CreateCartItemParams) (dbgen.CartItem, error) {
	now := m.stamp()
	it := dbgen.CartItem{
		ID:          common.PGUUID(uuid.New()),
		CartID:      arg.CartID,
		ProductID:   arg.ProductID,
		Sku:         arg.Sku,
		Name:        arg.Name,
		ImageUrl:    arg.ImageUrl,
		UnitPrice:   arg.UnitPrice,
		Quantity:    arg.Quantity,
		Subtotal:    arg.Subtotal,
		IsAvailable: arg.IsAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.items[common.FromPGUUID(it.ID)] = it
	return it, nil
}

func (m *memQueries) UpdateCartItemQuantity(_ context.Context, arg dbgen.UpdateCartItemQuantityParams) (dbgen.CartItem, error) {
	id := common.FromPGUUID(arg.ID)
	it, ok := m.items[id]
	if !ok {
		return dbgen.CartItem{}, pgx.ErrNoRows
	}
	it.Quantity = arg.Quantity
	it.Subtotal = arg.Subtotal
	it.IsAvailable = arg.IsAvailable
	it.UpdatedAt = m.stamp()
	m.items[id] = it
	return it, nil
}

func (m *memQueries) DeleteCartItem(_ context.Context, arg dbgen.DeleteCartItemParams) (int64, error) {
	id := common.FromPGUUID(arg.ID)
	it, ok := m.items[id]
	if !ok || it.CartID != arg.CartID {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

func (m *memQueries) DeleteCartItems(_ context.Context, cartID pgtype.UUID) error {
	for id, it := range m.items {
		if it.CartID == cartID {
			delete(m.items, id)
		}
	}
	return nil
}

// memStore serialises InTx like a row lock and discards writes when fn fails.
type memStore struct {
	mu sync.Mutex
	q  *memQueries
}

func newMemStore() *memStore { return &memStore{q: newMemQueries()} }

func (s *memStore) Queries() Querier { return s.q }

func (s *memStore) InTx(ctx context.Context, fn func(q Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.q.snapshot()
	if err := fn(s.q); err != nil {
		s.q.restore(snap)
		return err
	}
	return nil
}

func pgTime(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
