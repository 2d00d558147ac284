package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/toko-ledger/internal/common"
	"github.com/noah-isme/toko-ledger/internal/coupon"
)

var errorRules = []common.ErrorRule{
	{Target: ErrInvalidQuantity, Status: http.StatusBadRequest, Code: "INVALID_QUANTITY"},
	{Target: ErrCartNotFound, Status: http.StatusNotFound, Code: "CART_NOT_FOUND"},
	{Target: ErrLineNotFound, Status: http.StatusNotFound, Code: "CART_ITEM_NOT_FOUND"},
	{Target: ErrProductUnavailable, Status: http.StatusUnprocessableEntity, Code: "PRODUCT_UNAVAILABLE"},
	{Target: ErrInsufficientStock, Status: http.StatusConflict, Code: "INSUFFICIENT_STOCK"},
	{Target: ErrConcurrentUpdate, Status: http.StatusConflict, Code: "CONCURRENT_UPDATE"},
	{Target: coupon.ErrNotFound, Status: http.StatusNotFound, Code: "COUPON_NOT_FOUND"},
	{Target: coupon.ErrExpired, Status: http.StatusUnprocessableEntity, Code: "COUPON_EXPIRED"},
	{Target: coupon.ErrExhausted, Status: http.StatusUnprocessableEntity, Code: "COUPON_EXHAUSTED"},
	{Target: coupon.ErrMinOrderNotMet, Status: http.StatusUnprocessableEntity, Code: "MIN_ORDER_NOT_MET"},
}

// Handler wires cart services to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// NewHandler returns a handler with a fresh validator.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Validate: validator.New(validator.WithRequiredStructEnabled())}
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int32  `json:"quantity" validate:"required,min=1"`
}

type updateItemRequest struct {
	Quantity int32 `json:"quantity" validate:"required,min=1"`
}

type applyCouponRequest struct {
	CouponID string `json:"couponId" validate:"required,uuid"`
}

// Routes mounts the cart endpoints; the router must already require authentication.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/cart", h.Get)
	r.Post("/cart/items", h.AddItem)
	r.Delete("/cart/items", h.Clear)
	r.Patch("/cart/items/{itemId}", h.UpdateItem)
	r.Delete("/cart/items/{itemId}", h.RemoveItem)
	r.Post("/cart/coupon", h.ApplyCoupon)
	r.Delete("/cart/coupon", h.RemoveCoupon)
}

// Get returns the caller's cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	view, err := h.Svc.GetOrCreateCart(r.Context(), userID)
	h.respond(w, view, err)
}

// AddItem adds or increments a cart line item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var payload addItemRequest
	if !h.decode(w, r, &payload) {
		return
	}
	view, err := h.Svc.AddItem(r.Context(), userID, uuid.MustParse(payload.ProductID), payload.Quantity)
	h.respond(w, view, err)
}

// UpdateItem updates the quantity for a cart line item.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	itemID, err := common.ParseUUID(chi.URLParam(r, "itemId"))
	if err != nil {
		common.JSONError(w, http.StatusNotFound, "CART_ITEM_NOT_FOUND", ErrLineNotFound.Error(), nil)
		return
	}
	var payload updateItemRequest
	if !h.decode(w, r, &payload) {
		return
	}
	view, err := h.Svc.UpdateItemQuantity(r.Context(), userID, itemID, payload.Quantity)
	h.respond(w, view, err)
}

// RemoveItem deletes a cart item; removing an absent item still returns the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	itemID, err := common.ParseUUID(chi.URLParam(r, "itemId"))
	if err == nil {
		if _, err := h.Svc.RemoveItem(r.Context(), itemID, userID); err != nil {
			common.WriteError(w, err, errorRules)
			return
		}
	}
	view, err := h.Svc.GetOrCreateCart(r.Context(), userID)
	h.respond(w, view, err)
}

// Clear removes every line from the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	view, err := h.Svc.ClearCart(r.Context(), userID)
	h.respond(w, view, err)
}

// ApplyCoupon applies a coupon to the cart.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var payload applyCouponRequest
	if !h.decode(w, r, &payload) {
		return
	}
	view, err := h.Svc.ApplyCoupon(r.Context(), userID, uuid.MustParse(payload.CouponID))
	h.respond(w, view, err)
}

// RemoveCoupon detaches the applied coupon.
func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	view, err := h.Svc.RemoveCoupon(r.Context(), userID)
	h.respond(w, view, err)
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return uuid.Nil, false
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	return common.BindJSON(w, r, h.Validate, v)
}

func (h *Handler) respond(w http.ResponseWriter, view View, err error) {
	if err != nil {
		common.WriteError(w, err, errorRules)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}
