package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/common"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
)

// ErrNotFound is returned when the product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is the catalog snapshot consumed by the cart.
type Product struct {
	ID                uuid.UUID
	SKU               string
	Name              string
	ImageURL          string
	SellPrice         decimal.Decimal
	AvailableQuantity int32
	IsActive          bool
}

// Port is the product lookup contract.
type Port interface {
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
}

// Querier captures the database methods required by the catalog service.
type Querier interface {
	GetProductByID(ctx context.Context, id pgtype.UUID) (dbgen.Product, error)
}

// Service reads products from Postgres.
type Service struct {
	Q Querier
}

// GetByID returns the current product state.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	if s == nil || s.Q == nil {
		return Product{}, errors.New("catalog service not configured")
	}
	row, err := s.Q.GetProductByID(ctx, common.PGUUID(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return fromModel(row), nil
}

func fromModel(p dbgen.Product) Product {
	out := Product{
		ID:                common.FromPGUUID(p.ID),
		SKU:               p.Sku,
		Name:              p.Name,
		SellPrice:         p.SellPrice,
		AvailableQuantity: p.Stock,
		IsActive:          p.IsActive,
	}
	if p.ImageUrl.Valid {
		out.ImageURL = p.ImageUrl.String
	}
	return out
}

// Static is an in-memory Port keyed by product id.
type Static map[uuid.UUID]Product

// GetByID implements Port.
func (s Static) GetByID(_ context.Context, id uuid.UUID) (Product, error) {
	p, ok := s[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}
