package wallet

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/common"
	"github.com/noah-isme/toko-ledger/internal/gateway"
)

var errorRules = []common.ErrorRule{
	{Target: ErrInvalidAmount, Status: http.StatusBadRequest, Code: "INVALID_AMOUNT"},
	{Target: ErrAmountBelowMinimum, Status: http.StatusBadRequest, Code: "AMOUNT_BELOW_MINIMUM"},
	{Target: ErrUserNotFound, Status: http.StatusNotFound, Code: "USER_NOT_FOUND"},
	{Target: ErrTransactionNotFound, Status: http.StatusNotFound, Code: "TRANSACTION_NOT_FOUND"},
	{Target: gateway.ErrUnknownGateway, Status: http.StatusBadRequest, Code: "PROVIDER_NOT_SUPPORTED"},
	{Target: gateway.ErrInvalidRequest, Status: http.StatusBadRequest, Code: "INVALID_PAYMENT_REQUEST"},
	{Target: gateway.ErrGatewayUnavailable, Status: http.StatusServiceUnavailable, Code: "GATEWAY_UNAVAILABLE"},
}

// Handler wires the ledger to HTTP.
type Handler struct {
	Ledger   *Ledger
	Validate *validator.Validate
}

// NewHandler returns a handler with a fresh validator.
func NewHandler(ledger *Ledger) *Handler {
	return &Handler{Ledger: ledger, Validate: validator.New(validator.WithRequiredStructEnabled())}
}

type topUpRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Gateway     string          `json:"gateway" validate:"omitempty,oneof=vnpay momo VNPAY MOMO"`
	Description string          `json:"description" validate:"max=255"`
}

// Routes mounts the wallet endpoints; the router must already require authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/wallet", h.Balance)
	r.Get("/wallet/transactions", h.ListTransactions)
	r.Get("/wallet/transactions/{txId}", h.GetTransaction)
	r.Post("/wallet/topups", h.TopUp)
}

// Balance returns the caller's wallet balance.
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	balance, err := h.Ledger.GetBalance(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err, errorRules)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"balance": balance}})
}

// ListTransactions pages through the caller's ledger entries.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	limit, offset := common.ParseLimitOffset(r, defaultPageSize, maxPageSize)
	items, err := h.Ledger.ListTransactions(r.Context(), userID, limit, offset)
	if err != nil {
		common.WriteError(w, err, errorRules)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items, "limit": limit, "offset": offset})
}

// GetTransaction returns one of the caller's transactions.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	txID, err := common.ParseUUID(chi.URLParam(r, "txId"))
	if err != nil {
		common.WriteError(w, ErrTransactionNotFound, errorRules)
		return
	}
	tx, err := h.Ledger.GetTransaction(r.Context(), txID)
	if err == nil && tx.UserID != userID {
		err = ErrTransactionNotFound
	}
	if err != nil {
		common.WriteError(w, err, errorRules)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": tx})
}

// TopUp starts a gateway top-up and returns the pending transaction with its pay URL.
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var payload topUpRequest
	if !common.BindJSON(w, r, h.Validate, &payload) {
		return
	}
	req := TopUpRequest{
		UserID:      userID,
		Amount:      payload.Amount,
		Description: payload.Description,
		ClientIP:    common.ClientIP(r),
	}
	if payload.Gateway != "" {
		name, err := gateway.ParseName(payload.Gateway)
		if err != nil {
			common.WriteError(w, err, errorRules)
			return
		}
		req.Gateway = name
	}
	tx, err := h.Ledger.InitiateTopUp(r.Context(), req)
	if err != nil {
		common.WriteError(w, err, errorRules)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": tx})
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if h.Ledger == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "wallet service not configured", nil)
		return uuid.Nil, false
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return uuid.Nil, false
	}
	return userID, true
}
