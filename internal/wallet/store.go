package wallet

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/db"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
)

// Querier captures the database methods required by the ledger.
type Querier interface {
	GetUserByID(ctx context.Context, id pgtype.UUID) (dbgen.User, error)
	GetUserForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.User, error)
	AddUserWalletBalance(ctx context.Context, arg dbgen.AddUserWalletBalanceParams) (decimal.Decimal, error)

	CreateWalletTransaction(ctx context.Context, arg dbgen.CreateWalletTransactionParams) (dbgen.WalletTransaction, error)
	SetWalletTransactionGateway(ctx context.Context, arg dbgen.SetWalletTransactionGatewayParams) (dbgen.WalletTransaction, error)
	CompleteWalletTransaction(ctx context.Context, arg dbgen.CompleteWalletTransactionParams) (dbgen.WalletTransaction, error)
	GetWalletTransactionByID(ctx context.Context, id pgtype.UUID) (dbgen.WalletTransaction, error)
	GetWalletTransactionByIDForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.WalletTransaction, error)
	GetWalletTransactionByGatewayIDForUpdate(ctx context.Context, gatewayTransactionID pgtype.Text) (dbgen.WalletTransaction, error)
	ListWalletTransactionsByUser(ctx context.Context, arg dbgen.ListWalletTransactionsByUserParams) ([]dbgen.WalletTransaction, error)
	ListStalePendingTopUps(ctx context.Context, arg dbgen.ListStalePendingTopUpsParams) ([]dbgen.ListStalePendingTopUpsRow, error)

	GetPendingHoldByOrder(ctx context.Context, orderID pgtype.UUID) (dbgen.WalletTransaction, error)
	GetLatestHoldByOrderForUpdate(ctx context.Context, orderID pgtype.UUID) (dbgen.WalletTransaction, error)
	GetSuccessfulHoldByOrder(ctx context.Context, orderID pgtype.UUID) (dbgen.WalletTransaction, error)
	SumPendingHoldsByUser(ctx context.Context, userID pgtype.UUID) (decimal.Decimal, error)
	SumRefundsByOrder(ctx context.Context, orderID pgtype.UUID) (decimal.Decimal, error)
}

// Store exposes ledger queries and a unit of work.
type Store interface {
	Queries() Querier
	InTx(ctx context.Context, fn func(q Querier) error) error
}

type pgStore struct {
	db *db.Store
}

// NewPGStore adapts the shared Postgres store to the wallet Store contract.
func NewPGStore(store *db.Store) Store {
	return pgStore{db: store}
}

func (p pgStore) Queries() Querier { return p.db.Q }

func (p pgStore) InTx(ctx context.Context, fn func(q Querier) error) error {
	return p.db.InTx(ctx, func(q *dbgen.Queries) error { return fn(q) })
}
