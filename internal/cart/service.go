package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/toko-ledger/internal/catalog"
	"github.com/noah-isme/toko-ledger/internal/common"
	"github.com/noah-isme/toko-ledger/internal/coupon"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
	"github.com/noah-isme/toko-ledger/internal/events"
	"github.com/noah-isme/toko-ledger/internal/lock"
	"github.com/noah-isme/toko-ledger/internal/obs"
	"github.com/noah-isme/toko-ledger/internal/pricing"
)

var tracer = otel.Tracer("internal/cart")

// errNoop aborts a mutation without changing anything.
var errNoop = errors.New("cart: no change")

// Locker serialises mutations of one user's cart across replicas.
type Locker interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Service keeps cart totals consistent with its lines and applied coupon.
type Service struct {
	Store   Store
	Catalog catalog.Port
	Cache   Cache
	Locker  Locker
	LockTTL time.Duration
	Events  events.Emitter
	Logger  zerolog.Logger
	Now     func() time.Time

	sfg singleflight.Group
}

type mutation func(ctx context.Context, q Querier, c *dbgen.Cart) error

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ready() error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return nil
}

// GetOrCreateCart returns the user's cart, creating an empty one on first access.
// Views are served from the cache when present; concurrent misses share one load.
func (s *Service) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (View, error) {
	if err := s.ready(); err != nil {
		return View{}, err
	}
	if userID == uuid.Nil {
		return View{}, fmt.Errorf("user id is required: %w", ErrCartNotFound)
	}
	if s.Cache == nil {
		return s.load(ctx, userID)
	}
	v, err, _ := s.sfg.Do(userID.String(), func() (any, error) {
		// Shared by every waiting caller; one caller leaving must not fail the rest.
		ctx := context.WithoutCancel(ctx)
		view, err := s.Cache.Get(ctx, userID)
		if err == nil {
			return view, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.Logger.Warn().Err(err).Str("user_id", userID.String()).Msg("cart_cache_get_failed")
		}
		view, err = s.load(ctx, userID)
		if err != nil {
			return View{}, err
		}
		if err := s.Cache.Set(ctx, userID, view); err != nil {
			s.Logger.Warn().Err(err).Str("user_id", userID.String()).Msg("cart_cache_set_failed")
		}
		return view, nil
	})
	if err != nil {
		return View{}, err
	}
	return v.(View), nil
}

func (s *Service) load(ctx context.Context, userID uuid.UUID) (View, error) {
	q := s.Store.Queries()
	uid := common.PGUUID(userID)
	if err := q.EnsureCart(ctx, uid); err != nil {
		return View{}, err
	}
	c, err := q.GetCartByUser(ctx, uid)
	if err != nil {
		return View{}, err
	}
	items, err := q.ListCartItems(ctx, c.ID)
	if err != nil {
		return View{}, err
	}
	return buildView(c, items), nil
}

// AddItem adds qty of a product, merging into an existing line at its original unit price.
func (s *Service) AddItem(ctx context.Context, userID, productID uuid.UUID, qty int32) (View, error) {
	if qty < 1 {
		return View{}, ErrInvalidQuantity
	}
	return s.mutate(ctx, userID, "add_item", true, func(ctx context.Context, q Querier, c *dbgen.Cart) error {
		product, err := s.product(ctx, productID)
		if err != nil {
			return err
		}
		existing, err := q.FindCartItemByProduct(ctx, dbgen.FindCartItemByProductParams{
			CartID:    c.ID,
			ProductID: common.PGUUID(productID),
		})
		switch {
		case err == nil:
			if int64(existing.Quantity)+int64(qty) > math.MaxInt32 {
				return ErrInsufficientStock
			}
			merged := existing.Quantity + qty
			if merged > product.AvailableQuantity {
				return ErrInsufficientStock
			}
			_, err = q.UpdateCartItemQuantity(ctx, dbgen.UpdateCartItemQuantityParams{
				ID:          existing.ID,
				Quantity:    merged,
				Subtotal:    pricing.LineSubtotal(existing.UnitPrice, merged),
				IsAvailable: true,
			})
			return err
		case errors.Is(err, pgx.ErrNoRows):
			if qty > product.AvailableQuantity {
				return ErrInsufficientStock
			}
			price := pricing.Round(product.SellPrice)
			_, err = q.CreateCartItem(ctx, dbgen.CreateCartItemParams{
				CartID:      c.ID,
				ProductID:   common.PGUUID(productID),
				Sku:         product.SKU,
				Name:        product.Name,
				ImageUrl:    common.PGText(product.ImageURL),
				UnitPrice:   price,
				Quantity:    qty,
				Subtotal:    pricing.LineSubtotal(price, qty),
				IsAvailable: true,
			})
			return err
		default:
			return err
		}
	})
}

// UpdateItemQuantity sets the quantity of a line in the caller's cart.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, qty int32) (View, error) {
	if qty < 1 {
		return View{}, ErrInvalidQuantity
	}
	view, err := s.mutate(ctx, userID, "update_item", false, func(ctx context.Context, q Querier, c *dbgen.Cart) error {
		item, err := s.ownedLine(ctx, q, c, itemID)
		if err != nil {
			return err
		}
		product, err := s.product(ctx, common.FromPGUUID(item.ProductID))
		if err != nil {
			return err
		}
		if qty > product.AvailableQuantity {
			return ErrInsufficientStock
		}
		_, err = q.UpdateCartItemQuantity(ctx, dbgen.UpdateCartItemQuantityParams{
			ID:          item.ID,
			Quantity:    qty,
			Subtotal:    pricing.LineSubtotal(item.UnitPrice, qty),
			IsAvailable: true,
		})
		return err
	})
	if errors.Is(err, ErrCartNotFound) {
		return View{}, ErrLineNotFound
	}
	return view, err
}

// RemoveItem deletes a line from the caller's cart. A missing or foreign line reports false.
func (s *Service) RemoveItem(ctx context.Context, itemID, userID uuid.UUID) (bool, error) {
	_, err := s.mutate(ctx, userID, "remove_item", false, func(ctx context.Context, q Querier, c *dbgen.Cart) error {
		item, err := s.ownedLine(ctx, q, c, itemID)
		if errors.Is(err, ErrLineNotFound) {
			return errNoop
		}
		if err != nil {
			return err
		}
		rows, err := q.DeleteCartItem(ctx, dbgen.DeleteCartItemParams{ID: item.ID, CartID: c.ID})
		if err != nil {
			return err
		}
		if rows == 0 {
			return errNoop
		}
		return nil
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errNoop), errors.Is(err, ErrCartNotFound):
		return false, nil
	default:
		return false, err
	}
}

// ClearCart deletes every line and detaches the coupon.
func (s *Service) ClearCart(ctx context.Context, userID uuid.UUID) (View, error) {
	view, err := s.mutate(ctx, userID, "clear", true, func(ctx context.Context, q Querier, c *dbgen.Cart) error {
		if err := q.DeleteCartItems(ctx, c.ID); err != nil {
			return err
		}
		c.CouponID = pgtype.UUID{}
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.emit(ctx, events.TopicCartCleared, view.ID, map[string]any{"cart_id": view.ID, "user_id": userID})
	return view, nil
}

// ApplyCoupon attaches a coupon after validating it against the freshly recomputed subtotal.
// The minimum order is only checked here; later recomputes keep the coupon attached.
func (s *Service) ApplyCoupon(ctx context.Context, userID, couponID uuid.UUID) (View, error) {
	view, err := s.mutate(ctx, userID, "apply_coupon", false, func(ctx context.Context, q Querier, c *dbgen.Cart) error {
		rule, err := coupon.Load(ctx, q, couponID, userID)
		if err != nil {
			return err
		}
		if err := rule.Validate(s.now()); err != nil {
			return err
		}
		items, err := q.ListCartItems(ctx, c.ID)
		if err != nil {
			return err
		}
		if err := rule.CheckMinOrder(summarize(items).Subtotal); err != nil {
			return err
		}
		c.CouponID = common.PGUUID(rule.ID)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	s.emit(ctx, events.TopicCouponApplied, view.ID, map[string]any{
		"cart_id":   view.ID,
		"user_id":   userID,
		"coupon_id": couponID,
		"discount":  view.Discount,
	})
	return view, nil
}

// RemoveCoupon detaches the coupon and zeroes the discount.
func (s *Service) RemoveCoupon(ctx context.Context, userID uuid.UUID) (View, error) {
	return s.mutate(ctx, userID, "remove_coupon", false, func(_ context.Context, _ Querier, c *dbgen.Cart) error {
		c.CouponID = pgtype.UUID{}
		return nil
	})
}

// mutate runs fn and the total recompute in one transaction on the locked cart row.
// A version conflict re-runs the whole operation once.
func (s *Service) mutate(ctx context.Context, userID uuid.UUID, op string, create bool, fn mutation) (View, error) {
	if err := s.ready(); err != nil {
		return View{}, err
	}
	if userID == uuid.Nil {
		return View{}, fmt.Errorf("user id is required: %w", ErrCartNotFound)
	}
	ctx, span := tracer.Start(ctx, "cart."+op)
	span.SetAttributes(attribute.String("user.id", userID.String()))
	defer span.End()

	var view View
	run := func(ctx context.Context) error {
		var err error
		for attempt := 0; attempt < 2; attempt++ {
			view, err = s.runOnce(ctx, userID, create, fn)
			if !errors.Is(err, ErrConcurrentUpdate) {
				return err
			}
			obs.ObserveCartConflict()
			s.Logger.Debug().Str("user_id", userID.String()).Str("op", op).Int("attempt", attempt+1).Msg("cart_concurrent_retry")
		}
		return err
	}

	var err error
	if s.Locker != nil {
		err = s.Locker.WithLock(ctx, lock.Key("cart", userID.String()), s.lockTTL(), run)
	} else {
		err = run(ctx)
	}

	switch {
	case err == nil:
		obs.ObserveCartMutation(op, "ok")
	case errors.Is(err, errNoop):
		obs.ObserveCartMutation(op, "noop")
		return View{}, err
	default:
		obs.ObserveCartMutation(op, "error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return View{}, err
	}
	s.writeThrough(userID, view)
	return view, nil
}

func (s *Service) runOnce(ctx context.Context, userID uuid.UUID, create bool, fn mutation) (View, error) {
	var view View
	err := s.Store.InTx(ctx, func(q Querier) error {
		uid := common.PGUUID(userID)
		if create {
			if err := q.EnsureCart(ctx, uid); err != nil {
				return err
			}
		}
		c, err := q.LockCartByUser(ctx, uid)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrCartNotFound
			}
			return err
		}
		if err := fn(ctx, q, &c); err != nil {
			return err
		}
		updated, items, err := s.recompute(ctx, q, c)
		if err != nil {
			return err
		}
		view = buildView(updated, items)
		return nil
	})
	return view, err
}

// recompute derives totals from the current lines and attached coupon and writes them
// only if the cart version is unchanged since c was read.
func (s *Service) recompute(ctx context.Context, q Querier, c dbgen.Cart) (dbgen.Cart, []dbgen.CartItem, error) {
	items, err := q.ListCartItems(ctx, c.ID)
	if err != nil {
		return dbgen.Cart{}, nil, err
	}
	sum := summarize(items)

	couponID := c.CouponID
	discount := decimal.Zero
	if couponID.Valid {
		cp, err := q.GetCouponByID(ctx, couponID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			couponID = pgtype.UUID{}
		case err != nil:
			return dbgen.Cart{}, nil, err
		default:
			discount = coupon.Compute(sum.Subtotal, coupon.RuleFromModel(cp))
		}
	}
	sum = sum.WithDiscount(discount)

	rows, err := q.UpdateCartTotals(ctx, dbgen.UpdateCartTotalsParams{
		ID:         c.ID,
		Version:    c.Version,
		TotalItems: sum.TotalItems,
		Subtotal:   sum.Subtotal,
		CouponID:   couponID,
		Discount:   sum.Discount,
	})
	if err != nil {
		return dbgen.Cart{}, nil, err
	}
	if rows == 0 {
		return dbgen.Cart{}, nil, ErrConcurrentUpdate
	}
	c.TotalItems = sum.TotalItems
	c.Subtotal = sum.Subtotal
	c.CouponID = couponID
	c.Discount = sum.Discount
	c.Version++
	c.UpdatedAt = pgtype.Timestamptz{Time: s.now(), Valid: true}
	return c, items, nil
}

func summarize(items []dbgen.CartItem) pricing.Summary {
	lines := make([]pricing.Line, len(items))
	for i, it := range items {
		lines[i] = pricing.Line{Quantity: it.Quantity, Subtotal: it.Subtotal}
	}
	return pricing.Totals(lines)
}

func (s *Service) ownedLine(ctx context.Context, q Querier, c *dbgen.Cart, itemID uuid.UUID) (dbgen.CartItem, error) {
	if itemID == uuid.Nil {
		return dbgen.CartItem{}, ErrLineNotFound
	}
	item, err := q.GetCartItemByID(ctx, common.PGUUID(itemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.CartItem{}, ErrLineNotFound
		}
		return dbgen.CartItem{}, err
	}
	if item.CartID != c.ID {
		return dbgen.CartItem{}, ErrLineNotFound
	}
	return item, nil
}

func (s *Service) product(ctx context.Context, productID uuid.UUID) (catalog.Product, error) {
	if s.Catalog == nil {
		return catalog.Product{}, errors.New("catalog not configured")
	}
	p, err := s.Catalog.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return catalog.Product{}, ErrProductUnavailable
		}
		return catalog.Product{}, err
	}
	if !p.IsActive {
		return catalog.Product{}, ErrProductUnavailable
	}
	return p, nil
}

func (s *Service) lockTTL() time.Duration {
	if s.LockTTL <= 0 {
		return 10 * time.Second
	}
	return s.LockTTL
}

// writeThrough caches the committed view. A failed write drops the cached view instead.
func (s *Service) writeThrough(userID uuid.UUID, view View) {
	s.sfg.Forget(userID.String())
	if s.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.Cache.Set(ctx, userID, view)
	if err == nil {
		return
	}
	s.Logger.Warn().Err(err).Str("user_id", userID.String()).Msg("cart_cache_write_failed")
	if err := s.Cache.Delete(ctx, userID); err != nil {
		s.Logger.Warn().Err(err).Str("user_id", userID.String()).Msg("cart_cache_invalidate_failed")
	}
}

func (s *Service) emit(ctx context.Context, topic string, cartID uuid.UUID, payload any) {
	if s.Events == nil {
		return
	}
	if _, err := s.Events.Emit(ctx, topic, common.PGUUID(cartID), payload); err != nil {
		s.Logger.Warn().Err(err).Str("topic", topic).Msg("cart_event_emit_failed")
	}
}
