package cart

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-ledger/internal/common"
	dbgen "github.com/noah-isme/toko-ledger/internal/db/gen"
)

type envelope struct {
	Data  View `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-Test-User") == "" {
				next.ServeHTTP(w, req)
				return
			}
			next.ServeHTTP(w, req.WithContext(common.WithUserID(req.Context(), f.user)))
		})
	})
	NewHandler(f.svc).Routes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", "1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func TestHandlerCartFlow(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	rr, env := doJSON(t, h, http.MethodPost, "/cart/items", map[string]any{"productId": f.product.String(), "quantity": 2})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, env.Data.Items, 1)
	requireMoney(t, "100000", env.Data.Subtotal)

	couponID := f.addCoupon(f.user, dbgen.DiscountKindPERCENT, "10", "50000")
	rr, env = doJSON(t, h, http.MethodPost, "/cart/coupon", map[string]any{"couponId": couponID.String()})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	requireMoney(t, "90000", env.Data.Total)

	itemID := env.Data.Items[0].ID
	rr, env = doJSON(t, h, http.MethodPatch, "/cart/items/"+itemID.String(), map[string]any{"quantity": 1})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	requireMoney(t, "45000", env.Data.Total)

	rr, env = doJSON(t, h, http.MethodDelete, "/cart/coupon", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Nil(t, env.Data.CouponID)

	rr, env = doJSON(t, h, http.MethodDelete, "/cart/items/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, env.Data.Items, 1)

	rr, env = doJSON(t, h, http.MethodDelete, "/cart/items", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, env.Data.Items)
}

func TestHandlerErrors(t *testing.T) {
	f := newFixture(t)
	h := newTestRouter(f)

	rr, env := doJSON(t, h, http.MethodPost, "/cart/items", map[string]any{"productId": "nope", "quantity": 1})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	rr, env = doJSON(t, h, http.MethodPost, "/cart/items", map[string]any{"productId": f.product.String(), "quantity": 99})
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "INSUFFICIENT_STOCK", env.Error.Code)

	rr, env = doJSON(t, h, http.MethodPost, "/cart/coupon", map[string]any{"couponId": uuid.NewString()})
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "CART_NOT_FOUND", env.Error.Code)

	rr, env = doJSON(t, h, http.MethodPatch, "/cart/items/"+uuid.NewString(), map[string]any{"quantity": 1})
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "CART_ITEM_NOT_FOUND", env.Error.Code)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
