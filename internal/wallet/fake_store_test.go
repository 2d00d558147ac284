package wallet

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/common"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
)

type memQueries struct {
	users map[uuid.UUID]dbgen.User
	txs   map[uuid.UUID]dbgen.WalletTransaction
	clock time.Time
	seq   int64
	// locks records row-lock acquisitions in order; not rolled back.
	locks []string
}

func newMemQueries() *memQueries {
	return &memQueries{
		users: map[uuid.UUID]dbgen.User{},
		txs:   map[uuid.UUID]dbgen.WalletTransaction{},
		clock: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (m *memQueries) snapshot() *memQueries {
	return &memQueries{users: maps.Clone(m.users), txs: maps.Clone(m.txs), clock: m.clock, seq: m.seq}
}

func (m *memQueries) restore(from *memQueries) {
	m.users, m.txs, m.seq = from.users, from.txs, from.seq
}

func (m *memQueries) stamp() pgtype.Timestamptz {
	m.seq++
	return pgTime(m.clock.Add(time.Duration(m.seq) * time.Second))
}

func (m *memQueries) addUser(balance string) uuid.UUID {
	id := uuid.New()
	m.users[id] = dbgen.User{
		ID:            common.PGUUID(id),
		Email:         id.String() + "@example.com",
		WalletBalance: decimal.RequireFromString(balance),
	}
	return id
}

func (m *memQueries) balance(id uuid.UUID) decimal.Decimal {
	return m.users[id].WalletBalance
}

func (m *memQueries) GetUserByID(_ context.Context, id pgtype.UUID) (dbgen.User, error) {
	u, ok := m.users[common.FromPGUUID(id)]
	if !ok {
		return dbgen.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memQueries) GetUserForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.User, error) {
	m.locks = append(m.locks, "user")
	return m.GetUserByID(ctx, id)
}

func (m *memQueries) AddUserWalletBalance(_ context.Context, arg dbgen.AddUserWalletBalanceParams) (decimal.Decimal, error) {
	uid := common.FromPGUUID(arg.ID)
	u, ok := m.users[uid]
	if !ok {
		return decimal.Zero, pgx.ErrNoRows
	}
	next := u.WalletBalance.Add(arg.Delta)
	if next.IsNegative() {
		return decimal.Zero, pgx.ErrNoRows
	}
	u.WalletBalance = next
	m.users[uid] = u
	return next, nil
}

func (m *memQueries) CreateWalletTransaction(_ context.Context, arg dbgen.CreateWalletTransactionParams) (dbgen.WalletTransaction, error) {
	if arg.Type == dbgen.WalletTxTypeHOLD {
		for _, tx := range m.txs {
			if tx.Type == dbgen.WalletTxTypeHOLD && tx.Status == dbgen.WalletTxStatusPENDING && tx.OrderID == arg.OrderID {
				return dbgen.WalletTransaction{}, &pgconn.PgError{Code: "23505"}
			}
		}
	}
	id := uuid.New()
	tx := dbgen.WalletTransaction{
		ID:            common.PGUUID(id),
		UserID:        arg.UserID,
		Type:          arg.Type,
		Amount:        arg.Amount,
		Gateway:       arg.Gateway,
		OrderID:       arg.OrderID,
		Status:        dbgen.WalletTxStatusPENDING,
		BalanceBefore: arg.BalanceBefore,
		BalanceAfter:  arg.BalanceBefore,
		Description:   arg.Description,
		CreatedAt:     m.stamp(),
	}
	m.txs[id] = tx
	return tx, nil
}

func (m *memQueries) SetWalletTransactionGateway(_ context.Context, arg dbgen.SetWalletTransactionGatewayParams) (dbgen.WalletTransaction, error) {
	id := common.FromPGUUID(arg.ID)
	tx, ok := m.txs[id]
	if !ok || tx.Status != dbgen.WalletTxStatusPENDING {
		return dbgen.WalletTransaction{}, pgx.ErrNoRows
	}
	for otherID, other := range m.txs {
		if otherID != id && other.GatewayTransactionID.Valid && other.GatewayTransactionID == arg.GatewayTransactionID {
			return dbgen.WalletTransaction{}, &pgconn.PgError{Code: "23505"}
		}
	}
	tx.GatewayTransactionID = arg.GatewayTransactionID
	tx.PayUrl = arg.PayUrl
	m.txs[id] = tx
	return tx, nil
}

func (m *memQueries) CompleteWalletTransaction(_ context.Context, arg dbgen.CompleteWalletTransactionParams) (dbgen.WalletTransaction, error) {
	id := common.FromPGUUID(arg.ID)
	tx, ok := m.txs[id]
	if !ok || tx.Status != dbgen.WalletTxStatusPENDING {
		return dbgen.WalletTransaction{}, pgx.ErrNoRows
	}
	tx.Status = arg.Status
	tx.Amount = arg.Amount
	tx.BalanceBefore = arg.BalanceBefore
	tx.BalanceAfter = arg.BalanceAfter
	tx.ProcessedAt = m.stamp()
	m.txs[id] = tx
	return tx, nil
}

func (m *memQueries) GetWalletTransactionByID(_ context.Context, id pgtype.UUID) (dbgen.WalletTransaction, error) {
	tx, ok := m.txs[common.FromPGUUID(id)]
	if !ok {
		return dbgen.WalletTransaction{}, pgx.ErrNoRows
	}
	return tx, nil
}

func (m *memQueries) GetWalletTransactionByIDForUpdate(ctx context.Context, id pgtype.UUID) (dbgen.WalletTransaction, error) {
	m.locks = append(m.locks, "tx")
	return m.GetWalletTransactionByID(ctx, id)
}

func (m *memQueries) GetWalletTransactionByGatewayIDForUpdate(_ context.Context, gatewayTransactionID pgtype.Text) (dbgen.WalletTransaction, error) {
	m.locks = append(m.locks, "tx")
	for _, tx := range m.txs {
		if tx.GatewayTransactionID.Valid && tx.GatewayTransactionID.String == gatewayTransactionID.String {
			return tx, nil
		}
	}
	return dbgen.WalletTransaction{}, pgx.ErrNoRows
}

func (m *memQueries) sorted(keep func(dbgen.WalletTransaction) bool) []dbgen.WalletTransaction {
	var out []dbgen.WalletTransaction
	for _, tx := range m.txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Time.After(out[j].CreatedAt.Time) })
	return out
}

func (m *memQueries) ListWalletTransactionsByUser(_ context.Context, arg dbgen.ListWalletTransactionsByUserParams) ([]dbgen.WalletTransaction, error) {
	rows := m.sorted(func(tx dbgen.WalletTransaction) bool { return tx.UserID == arg.UserID })
	start := min(int(arg.Offset), len(rows))
	end := min(start+int(arg.Limit), len(rows))
	return rows[start:end], nil
}

func (m *memQueries) ListStalePendingTopUps(_ context.Context, arg dbgen.ListStalePendingTopUpsParams) ([]dbgen.ListStalePendingTopUpsRow, error) {
	rows := m.sorted(func(tx dbgen.WalletTransaction) bool {
		return tx.Type == dbgen.WalletTxTypeTOPUP && tx.Status == dbgen.WalletTxStatusPENDING && tx.CreatedAt.Time.Before(arg.CreatedBefore.Time)
	})
	var out []dbgen.ListStalePendingTopUpsRow
	for i := len(rows) - 1; i >= 0 && len(out) < int(arg.MaxRows); i-- {
		out = append(out, dbgen.ListStalePendingTopUpsRow{ID: rows[i].ID, GatewayTransactionID: rows[i].GatewayTransactionID})
	}
	return out, nil
}

func (m *memQueries) GetPendingHoldByOrder(_ context.Context, orderID pgtype.UUID) (dbgen.WalletTransaction, error) {
	rows := m.sorted(func(tx dbgen.WalletTransaction) bool {
		return tx.Type == dbgen.WalletTxTypeHOLD && tx.Status == dbgen.WalletTxStatusPENDING && tx.OrderID == orderID
	})
	if len(rows) == 0 {
		return dbgen.WalletTransaction{}, pgx.ErrNoRows
	}
	return rows[0], nil
}

func (m *memQueries) GetLatestHoldByOrderForUpdate(_ context.Context, orderID pgtype.UUID) (dbgen.WalletTransaction, error) {
	m.locks = append(m.locks, "tx")
	rows := m.sorted(func(tx dbgen.WalletTransaction) bool {
		return tx.Type == dbgen.WalletTxTypeHOLD && tx.OrderID == orderID
	})
	if len(rows) == 0 {
		return dbgen.WalletTransaction{}, pgx.ErrNoRows
	}
	return rows[0], nil
}

func (m *memQueries) GetSuccessfulHoldByOrder(_ context.Context, orderID pgtype.UUID) (dbgen.WalletTransaction, error) {
	rows := m.sorted(func(tx dbgen.WalletTransaction) bool {
		return tx.Type == dbgen.WalletTxTypeHOLD && tx.Status == dbgen.WalletTxStatusSUCCESS && tx.OrderID == orderID
	})
	if len(rows) == 0 {
		return dbgen.WalletTransaction{}, pgx.ErrNoRows
	}
	return rows[0], nil
}

func (m *memQueries) SumPendingHoldsByUser(_ context.Context, userID pgtype.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range m.txs {
		if tx.UserID == userID && tx.Type == dbgen.WalletTxTypeHOLD && tx.Status == dbgen.WalletTxStatusPENDING {
			total = total.Sub(tx.Amount)
		}
	}
	return total, nil
}

func (m *memQueries) SumRefundsByOrder(_ context.Context, orderID pgtype.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range m.txs {
		if tx.OrderID == orderID && tx.Type == dbgen.WalletTxTypeREFUND && tx.Status == dbgen.WalletTxStatusSUCCESS {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// memStore serialises InTx like a row lock and discards writes when fn fails.
type memStore struct {
	mu sync.Mutex
	q  *memQueries
}

func newMemStore() *memStore { return &memStore{q: newMemQueries()} }

func (s *memStore) Queries() Querier { return s.q }

func (s *memStore) InTx(_ context.Context, fn func(q Querier) error) error {
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
