package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/common"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
)

// Transaction is the API representation of a wallet ledger entry.
type Transaction struct {
	ID                   uuid.UUID       `json:"id"`
	UserID               uuid.UUID       `json:"userId"`
	Type                 string          `json:"type"`
	Amount               decimal.Decimal `json:"amount"`
	Gateway              string          `json:"gateway"`
	GatewayTransactionID string          `json:"gatewayTransactionId,omitempty"`
	OrderID              *uuid.UUID      `json:"orderId,omitempty"`
	Status               string          `json:"status"`
	BalanceBefore        decimal.Decimal `json:"balanceBefore"`
	BalanceAfter         decimal.Decimal `json:"balanceAfter"`
	Description          string          `json:"description"`
	PayURL               string          `json:"payUrl,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	ProcessedAt          *time.Time      `json:"processedAt,omitempty"`
}

// Terminal reports whether the transaction left PENDING.
func (t Transaction) Terminal() bool {
	return t.Status != string(dbgen.WalletTxStatusPENDING)
}

func toTransaction(tx dbgen.WalletTransaction) Transaction {
	out := Transaction{
		ID:                   common.FromPGUUID(tx.ID),
		UserID:               common.FromPGUUID(tx.UserID),
		Type:                 string(tx.Type),
		Amount:               tx.Amount,
		Gateway:              string(tx.Gateway),
		GatewayTransactionID: tx.GatewayTransactionID.String,
		Status:               string(tx.Status),
		BalanceBefore:        tx.BalanceBefore,
		BalanceAfter:         tx.BalanceAfter,
		Description:          tx.Description,
		PayURL:               tx.PayUrl.String,
		CreatedAt:            tx.CreatedAt.Time,
	}
	if tx.OrderID.Valid {
		id := common.FromPGUUID(tx.OrderID)
		out.OrderID = &id
	}
	if tx.ProcessedAt.Valid {
		at := tx.ProcessedAt.Time
		out.ProcessedAt = &at
	}
	return out
}
