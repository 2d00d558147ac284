package coupon

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/common"
)

var errorRules = []common.ErrorRule{
	{Target: ErrNotFound, Status: http.StatusNotFound, Code: "COUPON_NOT_FOUND"},
	{Target: ErrExpired, Status: http.StatusUnprocessableEntity, Code: "COUPON_EXPIRED"},
	{Target: ErrExhausted, Status: http.StatusUnprocessableEntity, Code: "COUPON_EXHAUSTED"},
	{Target: ErrMinOrderNotMet, Status: http.StatusUnprocessableEntity, Code: "MIN_ORDER_NOT_MET"},
}

// Handler exposes coupon evaluation and order settlement for the order service.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// NewHandler returns a handler with a fresh validator.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Validate: validator.New(validator.WithRequiredStructEnabled())}
}

type evaluateRequest struct {
	Subtotal decimal.Decimal `json:"subtotal"`
}

type settleRequest struct {
	OrderID string          `json:"orderId" validate:"required,uuid"`
	Amount  decimal.Decimal `json:"amount"`
}

// Routes mounts the coupon endpoints; the router must already require authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/coupons/{couponId}/evaluate", h.Evaluate)
	r.Post("/coupons/{couponId}/usages", h.Settle)
}

// Evaluate prices a coupon against a subtotal without applying it.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	userID, couponID, ok := h.target(w, r)
	if !ok {
		return
	}
	var payload evaluateRequest
	if !common.BindJSON(w, r, h.Validate, &payload) {
		return
	}
	if payload.Subtotal.IsNegative() {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_FAILED", "subtotal must not be negative", nil)
		return
	}
	eval, err := h.Svc.Evaluate(r.Context(), couponID, userID, payload.Subtotal)
	if err != nil {
		common.WriteError(w, err, errorRules)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": eval})
}

// Settle records the coupon as used by a paid order.
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	userID, couponID, ok := h.target(w, r)
	if !ok {
		return
	}
	var payload settleRequest
	if !common.BindJSON(w, r, h.Validate, &payload) {
		return
	}
	orderID := uuid.MustParse(payload.OrderID)
	if err := h.Svc.Settle(r.Context(), couponID, orderID, userID, payload.Amount); err != nil {
		common.WriteError(w, err, errorRules)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"couponId": couponID, "orderId": orderID}})
}

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "coupon service not configured", nil)
		return uuid.Nil, uuid.Nil, false
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return uuid.Nil, uuid.Nil, false
	}
	couponID, err := uuid.Parse(chi.URLParam(r, "couponId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid coupon id", nil)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, couponID, true
}
