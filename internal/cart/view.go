package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/common"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
	"github.com/noah-isme/toko-ledger/internal/pricing"
)

// View is the cart representation returned by every cart operation.
type View struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	TotalItems int32           `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	CouponID   *uuid.UUID      `json:"couponId"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	Version    int64           `json:"version"`
	Items      []Item          `json:"items"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Item is a cart line with its product snapshot.
type Item struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int32           `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	IsAvailable bool            `json:"isAvailable"`
}

func buildView(c dbgen.Cart, items []dbgen.CartItem) View {
	v := View{
		ID:         common.FromPGUUID(c.ID),
		UserID:     common.FromPGUUID(c.UserID),
		TotalItems: c.TotalItems,
		Subtotal:   c.Subtotal,
		Discount:   c.Discount,
		Total:      pricing.Payable(c.Subtotal, c.Discount),
		Version:    c.Version,
		Items:      make([]Item, 0, len(items)),
	}
	if c.CouponID.Valid {
		id := common.FromPGUUID(c.CouponID)
		v.CouponID = &id
	}
	if c.UpdatedAt.Valid {
		v.UpdatedAt = c.UpdatedAt.Time
	}
	for _, it := range items {
		item := Item{
			ID:          common.FromPGUUID(it.ID),
			ProductID:   common.FromPGUUID(it.ProductID),
			SKU:         it.Sku,
			Name:        it.Name,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Subtotal:    it.Subtotal,
			IsAvailable: it.IsAvailable,
		}
		if it.ImageUrl.Valid {
			item.ImageURL = it.ImageUrl.String
		}
		v.Items = append(v.Items, item)
	}
	return v
}
