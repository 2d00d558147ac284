package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/toko-ledger/internal/common"
	"github.com/noah-isme/toko-ledger/internal/db"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
	"github.com/noah-isme/toko-ledger/internal/events"
	"github.com/noah-isme/toko-ledger/internal/gateway"
	"github.com/noah-isme/toko-ledger/internal/obs"
	"github.com/noah-isme/toko-ledger/internal/pricing"
)

var tracer = otel.Tracer("internal/wallet")

// errAlreadyFinal reports a transition that lost the PENDING compare-and-swap.
var errAlreadyFinal = errors.New("wallet: transaction already final")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PaymentGateway opens a payment with an external provider.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, name gateway.Name, req gateway.PaymentRequest) (gateway.PaymentResponse, error)
}

// Ledger owns wallet balances and their append-only transaction log.
// Every balance change happens in the same database transaction as the
// PENDING to terminal transition that causes it.
type Ledger struct {
	Store          Store
	Gateway        PaymentGateway
	DefaultGateway gateway.Name
	MinTopUp       decimal.Decimal
	Events         events.Emitter
	Logger         zerolog.Logger
	Now            func() time.Time
}

// TopUpRequest is the input to InitiateTopUp.
type TopUpRequest struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Gateway     gateway.Name
	Description string
	ClientIP    string
}

func (l *Ledger) ready() error {
	if l == nil || l.Store == nil {
		return errors.New("wallet ledger not configured")
	}
	return nil
}

func (l *Ledger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// InitiateTopUp records a PENDING top-up and opens the matching payment with the gateway.
// The gateway call runs inside the transaction, so a gateway failure leaves no row behind.
func (l *Ledger) InitiateTopUp(ctx context.Context, req TopUpRequest) (Transaction, error) {
	if err := l.ready(); err != nil {
		return Transaction{}, err
	}
	if l.Gateway == nil {
		return Transaction{}, errors.New("payment gateway not configured")
	}
	amount := pricing.Round(req.Amount)
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	if amount.LessThan(l.MinTopUp) {
		return Transaction{}, ErrAmountBelowMinimum
	}
	name := req.Gateway
	if name == "" {
		name = l.DefaultGateway
	}
	if name == "" {
		name = gateway.VNPay
	}
	stored, err := storedGateway(name)
	if err != nil {
		return Transaction{}, err
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Wallet top-up"
	}

	ctx, span := tracer.Start(ctx, "wallet.initiate_topup", trace.WithAttributes(
		attribute.String("user.id", req.UserID.String()),
		attribute.String("gateway", string(name)),
	))
	defer span.End()

	var out dbgen.WalletTransaction
	err = l.Store.InTx(ctx, func(q Querier) error {
		user, err := q.GetUserByID(ctx, common.PGUUID(req.UserID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}
		pending, err := q.CreateWalletTransaction(ctx, dbgen.CreateWalletTransactionParams{
			UserID:        user.ID,
			Type:          dbgen.WalletTxTypeTOPUP,
			Amount:        amount,
			Gateway:       stored,
			BalanceBefore: user.WalletBalance,
			Description:   description,
		})
		if err != nil {
			return err
		}
		resp, err := l.Gateway.CreatePayment(ctx, name, gateway.PaymentRequest{
			Reference:   common.FromPGUUID(pending.ID).String(),
			UserID:      req.UserID,
			Amount:      amount,
			Description: description,
			ClientIP:    req.ClientIP,
		})
		if err != nil {
			return err
		}
		out, err = q.SetWalletTransactionGateway(ctx, dbgen.SetWalletTransactionGatewayParams{
			ID:                   pending.ID,
			GatewayTransactionID: common.PGText(resp.TransactionID),
			PayUrl:               common.PGText(resp.PayURL),
		})
		return err
	})
	if err != nil {
		failSpan(span, err)
		return Transaction{}, err
	}
	l.Logger.Info().
		Str("user_id", req.UserID.String()).
		Str("gateway", string(name)).
		Str("gateway_tx_id", out.GatewayTransactionID.String).
		Str("amount", amount.String()).
		Msg("wallet_topup_initiated")
	return toTransaction(out), nil
}

// ConfirmByGatewayID applies a gateway-confirmed outcome to the matching transaction.
// It reports false when no transaction carries gatewayTxID. A transaction that is
// already terminal is left untouched and reported as true, so duplicate deliveries
// never move the balance twice. finalAmount, when set, replaces the requested amount
// on SUCCESS.
func (l *Ledger) ConfirmByGatewayID(ctx context.Context, gatewayTxID string, status dbgen.WalletTxStatus, finalAmount *decimal.Decimal) (bool, error) {
	return l.confirm(ctx, gatewayTxID, "", status, finalAmount)
}

// ConfirmCallback adapts a verified provider callback onto ConfirmByGatewayID.
// Callbacks from a provider other than the one the transaction was opened with do not match.
func (l *Ledger) ConfirmCallback(ctx context.Context, res gateway.CallbackResult) (bool, error) {
	var status dbgen.WalletTxStatus
	switch res.Status {
	case gateway.StatusSuccess:
		status = dbgen.WalletTxStatusSUCCESS
	case gateway.StatusFailed:
		status = dbgen.WalletTxStatusFAILED
	default:
		return false, ErrInvalidStatus
	}
	stored, err := storedGateway(res.Gateway)
	if err != nil {
		return false, err
	}
	return l.confirm(ctx, res.TransactionID, stored, status, res.Amount)
}

func (l *Ledger) confirm(ctx context.Context, gatewayTxID string, expect dbgen.PaymentGateway, status dbgen.WalletTxStatus, finalAmount *decimal.Decimal) (bool, error) {
	if err := l.ready(); err != nil {
		return false, err
	}
	if !terminal(status) {
		return false, ErrInvalidStatus
	}
	gatewayTxID = strings.TrimSpace(gatewayTxID)
	if gatewayTxID == "" {
		return false, nil
	}
	if finalAmount != nil {
		rounded := pricing.Round(*finalAmount)
		if !rounded.IsPositive() {
			return false, ErrInvalidAmount
		}
		finalAmount = &rounded
	}

	ctx, span := tracer.Start(ctx, "wallet.confirm", trace.WithAttributes(
		attribute.String("gateway.tx_id", gatewayTxID),
		attribute.String("wallet.status", string(status)),
	))
	defer span.End()

	var (
		found     bool
		duplicate bool
		txType    = "unknown"
		done      dbgen.WalletTransaction
	)
	err := l.Store.InTx(ctx, func(q Querier) error {
		tx, err := q.GetWalletTransactionByGatewayIDForUpdate(ctx, common.PGText(gatewayTxID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		if expect != "" && tx.Gateway != expect {
			return nil
		}
		found, txType = true, string(tx.Type)
		if tx.Status != dbgen.WalletTxStatusPENDING {
			duplicate, done = true, tx
			return nil
		}
		amount := tx.Amount
		if status == dbgen.WalletTxStatusSUCCESS && finalAmount != nil {
			amount = *finalAmount
		}
		done, err = l.settle(ctx, q, tx, status, amount)
		if errors.Is(err, errAlreadyFinal) {
			duplicate = true
			return nil
		}
		return err
	})

	logger := l.Logger.With().Str("gateway_tx_id", gatewayTxID).Str("status", string(status)).Logger()
	switch {
	case err != nil:
		obs.ObserveWalletConfirmation(txType, "failed")
		failSpan(span, err)
		return false, err
	case !found:
		obs.ObserveWalletConfirmation(txType, "not_found")
		logger.Warn().Msg("wallet_confirmation_unmatched")
		return false, nil
	case duplicate:
		obs.ObserveWalletConfirmation(txType, "duplicate")
		logger.Info().Str("current_status", string(done.Status)).Msg("wallet_confirmation_duplicate")
		return true, nil
	}
	obs.ObserveWalletConfirmation(txType, "applied")
	logger.Info().Str("amount", done.Amount.String()).Str("balance_after", done.BalanceAfter.String()).Msg("wallet_confirmation_applied")
	l.publish(ctx, done)
	return true, nil
}

// CreateHold reserves amount of the user's balance against an order. The hold is
// stored with a negative amount. Re-requesting the same amount for an order with a
// pending hold returns that hold.
func (l *Ledger) CreateHold(ctx context.Context, userID, orderID uuid.UUID, amount decimal.Decimal, description string) (Transaction, error) {
	if err := l.ready(); err != nil {
		return Transaction{}, err
	}
	amount = pricing.Round(amount)
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	if orderID == uuid.Nil {
		return Transaction{}, ErrOrderRequired
	}
	ctx, span := tracer.Start(ctx, "wallet.create_hold", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("order.id", orderID.String()),
	))
	defer span.End()

	uid, oid := common.PGUUID(userID), common.PGUUID(orderID)
	debit := amount.Neg()
	var out dbgen.WalletTransaction
	err := l.Store.InTx(ctx, func(q Querier) error {
		user, err := l.lockUser(ctx, q, uid)
		if err != nil {
			return err
		}
		existing, err := q.GetPendingHoldByOrder(ctx, oid)
		switch {
		case err == nil:
			if existing.UserID == uid && existing.Amount.Equal(debit) {
				out = existing
				return nil
			}
			return ErrHoldConflict
		case !errors.Is(err, pgx.ErrNoRows):
			return err
		}
		reserved, err := q.SumPendingHoldsByUser(ctx, uid)
		if err != nil {
			return err
		}
		if user.WalletBalance.Sub(reserved).LessThan(amount) {
			return ErrInsufficientBalance
		}
		out, err = q.CreateWalletTransaction(ctx, dbgen.CreateWalletTransactionParams{
			UserID:        uid,
			Type:          dbgen.WalletTxTypeHOLD,
			Amount:        debit,
			Gateway:       dbgen.PaymentGatewayWALLET,
			OrderID:       oid,
			BalanceBefore: user.WalletBalance,
			Description:   defaultDescription(description, "Order payment hold"),
		})
		if db.IsUniqueViolation(err) {
			return ErrHoldConflict
		}
		return err
	})
	if err != nil {
		failSpan(span, err)
		return Transaction{}, err
	}
	return toTransaction(out), nil
}

// ConfirmHold settles the order's latest hold. SUCCESS debits the balance and fails
// with ErrInsufficientBalance, leaving the hold PENDING, when it no longer covers the
// hold. A hold that is already terminal is returned unchanged.
func (l *Ledger) ConfirmHold(ctx context.Context, orderID uuid.UUID, status dbgen.WalletTxStatus) (Transaction, error) {
	if err := l.ready(); err != nil {
		return Transaction{}, err
	}
	if !terminal(status) {
		return Transaction{}, ErrInvalidStatus
	}
	if orderID == uuid.Nil {
		return Transaction{}, ErrOrderRequired
	}
	ctx, span := tracer.Start(ctx, "wallet.confirm_hold", trace.WithAttributes(
		attribute.String("order.id", orderID.String()),
		attribute.String("wallet.status", string(status)),
	))
	defer span.End()

	var (
		done      dbgen.WalletTransaction
		duplicate bool
	)
	err := l.Store.InTx(ctx, func(q Querier) error {
		hold, err := q.GetLatestHoldByOrderForUpdate(ctx, common.PGUUID(orderID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrTransactionNotFound
			}
			return err
		}
		if hold.Status != dbgen.WalletTxStatusPENDING {
			done, duplicate = hold, true
			return nil
		}
		done, err = l.settle(ctx, q, hold, status, hold.Amount)
		if errors.Is(err, errAlreadyFinal) {
			duplicate = true
			return nil
		}
		return err
	})
	holdType := string(dbgen.WalletTxTypeHOLD)
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		obs.ObserveWalletConfirmation(holdType, "not_found")
		return Transaction{}, err
	case err != nil:
		obs.ObserveWalletConfirmation(holdType, "failed")
		failSpan(span, err)
		return Transaction{}, err
	case duplicate:
		obs.ObserveWalletConfirmation(holdType, "duplicate")
		return toTransaction(done), nil
	}
	obs.ObserveWalletConfirmation(holdType, "applied")
	l.publish(ctx, done)
	return toTransaction(done), nil
}

// CreateRefund credits amount back for an order. Refunds settle immediately and the
// order's refunds together may not exceed its settled hold.
func (l *Ledger) CreateRefund(ctx context.Context, userID, orderID uuid.UUID, amount decimal.Decimal, description string) (Transaction, error) {
	if err := l.ready(); err != nil {
		return Transaction{}, err
	}
	amount = pricing.Round(amount)
	if !amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	if orderID == uuid.Nil {
		return Transaction{}, ErrOrderRequired
	}
	ctx, span := tracer.Start(ctx, "wallet.create_refund", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("order.id", orderID.String()),
	))
	defer span.End()

	uid, oid := common.PGUUID(userID), common.PGUUID(orderID)
	var done dbgen.WalletTransaction
	err := l.Store.InTx(ctx, func(q Querier) error {
		user, err := l.lockUser(ctx, q, uid)
		if err != nil {
			return err
		}
		hold, err := q.GetSuccessfulHoldByOrder(ctx, oid)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRefundExceedsHold
			}
			return err
		}
		if hold.UserID != uid {
			return ErrTransactionNotFound
		}
		refunded, err := q.SumRefundsByOrder(ctx, oid)
		if err != nil {
			return err
		}
		if refunded.Add(amount).GreaterThan(hold.Amount.Neg()) {
			return ErrRefundExceedsHold
		}
		pending, err := q.CreateWalletTransaction(ctx, dbgen.CreateWalletTransactionParams{
			UserID:        uid,
			Type:          dbgen.WalletTxTypeREFUND,
			Amount:        amount,
			Gateway:       dbgen.PaymentGatewayWALLET,
			OrderID:       oid,
			BalanceBefore: user.WalletBalance,
			Description:   defaultDescription(description, "Order refund"),
		})
		if err != nil {
			return err
		}
		done, err = l.settle(ctx, q, pending, dbgen.WalletTxStatusSUCCESS, amount)
		return err
	})
	refundType := string(dbgen.WalletTxTypeREFUND)
	if err != nil {
		obs.ObserveWalletConfirmation(refundType, "failed")
		failSpan(span, err)
		return Transaction{}, err
	}
	obs.ObserveWalletConfirmation(refundType, "applied")
	l.publish(ctx, done)
	return toTransaction(done), nil
}

// settle moves a PENDING transaction to status. balance_before is re-read under the
// user row lock; on SUCCESS the delta is applied in the same unit of work.
// FAILED keeps balance_after equal to balance_before.
//
// Lock order: callers holding an existing transaction must have locked its row
// (SELECT ... FOR UPDATE) before calling settle, which then locks the user row.
// Rows created in the current transaction are already exclusively held.
func (l *Ledger) settle(ctx context.Context, q Querier, tx dbgen.WalletTransaction, status dbgen.WalletTxStatus, amount decimal.Decimal) (dbgen.WalletTransaction, error) {
	user, err := l.lockUser(ctx, q, tx.UserID)
	if err != nil {
		return dbgen.WalletTransaction{}, err
	}
	before := user.WalletBalance
	after := before
	if status == dbgen.WalletTxStatusSUCCESS {
		after = before.Add(amount)
		if after.IsNegative() {
			return dbgen.WalletTransaction{}, ErrInsufficientBalance
		}
	}
	done, err := q.CompleteWalletTransaction(ctx, dbgen.CompleteWalletTransactionParams{
		ID:            tx.ID,
		Status:        status,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.WalletTransaction{}, errAlreadyFinal
		}
		return dbgen.WalletTransaction{}, err
	}
	if status == dbgen.WalletTxStatusSUCCESS && !amount.IsZero() {
		if _, err := q.AddUserWalletBalance(ctx, dbgen.AddUserWalletBalanceParams{Delta: amount, ID: tx.UserID}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return dbgen.WalletTransaction{}, ErrInsufficientBalance
			}
			return dbgen.WalletTransaction{}, err
		}
	}
	return done, nil
}

func (l *Ledger) lockUser(ctx context.Context, q Querier, id pgtype.UUID) (dbgen.User, error) {
	user, err := q.GetUserForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.User{}, ErrUserNotFound
		}
		return dbgen.User{}, err
	}
	return user, nil
}

// GetBalance returns the user's live wallet balance.
func (l *Ledger) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if err := l.ready(); err != nil {
		return decimal.Zero, err
	}
	user, err := l.Store.Queries().GetUserByID(ctx, common.PGUUID(userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return user.WalletBalance, nil
}

// ListTransactions pages through the user's transactions, newest first.
func (l *Ledger) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Transaction, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := l.Store.Queries().ListWalletTransactionsByUser(ctx, dbgen.ListWalletTransactionsByUserParams{
		UserID: common.PGUUID(userID),
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}
	out := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTransaction(row))
	}
	return out, nil
}

// GetTransaction loads one transaction by id.
func (l *Ledger) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	if err := l.ready(); err != nil {
		return Transaction{}, err
	}
	tx, err := l.Store.Queries().GetWalletTransactionByID(ctx, common.PGUUID(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrTransactionNotFound
		}
		return Transaction{}, err
	}
	return toTransaction(tx), nil
}

// ExpirePending fails up to limit PENDING top-ups created more than olderThan ago.
// Each row goes through the same PENDING compare-and-swap as a callback, so a
// callback that wins the race leaves the row alone.
func (l *Ledger) ExpirePending(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	if err := l.ready(); err != nil {
		return 0, err
	}
	if olderThan <= 0 {
		olderThan = 24 * time.Hour
	}
	if limit <= 0 {
		limit = maxPageSize
	}
	ctx, span := tracer.Start(ctx, "wallet.expire_pending")
	defer span.End()

	cutoff := l.now().Add(-olderThan)
	rows, err := l.Store.Queries().ListStalePendingTopUps(ctx, dbgen.ListStalePendingTopUpsParams{
		CreatedBefore: pgtype.Timestamptz{Time: cutoff, Valid: true},
		MaxRows:       int32(limit),
	})
	if err != nil {
		failSpan(span, err)
		return 0, err
	}

	var (
		expired int
		joined  error
	)
	for _, row := range rows {
		var done dbgen.WalletTransaction
		err := l.Store.InTx(ctx, func(q Querier) error {
			tx, err := q.GetWalletTransactionByIDForUpdate(ctx, row.ID)
			if err != nil {
				return err
			}
			if tx.Status != dbgen.WalletTxStatusPENDING {
				return errAlreadyFinal
			}
			done, err = l.settle(ctx, q, tx, dbgen.WalletTxStatusFAILED, tx.Amount)
			return err
		})
		switch {
		case errors.Is(err, errAlreadyFinal):
			continue
		case err != nil:
			id := common.FromPGUUID(row.ID).String()
			l.Logger.Error().Err(err).Str("wallet_tx_id", id).Msg("wallet_expire_failed")
			joined = errors.Join(joined, fmt.Errorf("expire %s: %w", id, err))
			continue
		}
		expired++
		l.publish(ctx, done)
	}
	obs.ObserveWalletExpired(expired)
	span.SetAttributes(attribute.Int("wallet.expired", expired))
	l.Logger.Info().Int("expired", expired).Int("scanned", len(rows)).Time("cutoff", cutoff).Msg("wallet_pending_expired")
	return expired, joined
}

func (l *Ledger) publish(ctx context.Context, tx dbgen.WalletTransaction) {
	if l.Events == nil {
		return
	}
	topic := topicFor(tx.Type, tx.Status)
	if topic == "" {
		return
	}
	view := toTransaction(tx)
	if _, err := l.Events.Emit(ctx, topic, tx.ID, map[string]any{
		"transaction_id":         view.ID,
		"user_id":                view.UserID,
		"order_id":               view.OrderID,
		"gateway":                view.Gateway,
		"gateway_transaction_id": view.GatewayTransactionID,
		"amount":                 view.Amount,
		"balance_after":          view.BalanceAfter,
	}); err != nil {
		l.Logger.Warn().Err(err).Str("topic", topic).Msg("wallet_event_emit_failed")
	}
}

func topicFor(txType dbgen.WalletTxType, status dbgen.WalletTxStatus) string {
	switch {
	case txType == dbgen.WalletTxTypeTOPUP && status == dbgen.WalletTxStatusSUCCESS:
		return events.TopicTopUpSucceeded
	case txType == dbgen.WalletTxTypeTOPUP && status == dbgen.WalletTxStatusFAILED:
		return events.TopicTopUpFailed
	case txType == dbgen.WalletTxTypeHOLD && status == dbgen.WalletTxStatusSUCCESS:
		return events.TopicHoldConfirmed
	case txType == dbgen.WalletTxTypeHOLD && status == dbgen.WalletTxStatusFAILED:
		return events.TopicHoldFailed
	case txType == dbgen.WalletTxTypeREFUND && status == dbgen.WalletTxStatusSUCCESS:
		return events.TopicRefundSucceeded
	}
	return ""
}

func storedGateway(name gateway.Name) (dbgen.PaymentGateway, error) {
	switch name {
	case gateway.VNPay:
		return dbgen.PaymentGatewayVNPAY, nil
	case gateway.MoMo:
		return dbgen.PaymentGatewayMOMO, nil
	default:
		return "", fmt.Errorf("%w: %s", gateway.ErrUnknownGateway, name)
	}
}

func terminal(status dbgen.WalletTxStatus) bool {
	return status == dbgen.WalletTxStatusSUCCESS || status == dbgen.WalletTxStatusFAILED
}

func defaultDescription(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
