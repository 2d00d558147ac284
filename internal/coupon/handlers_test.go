package coupon

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
	"github.com/noah-isme/toko-ledger/internal/pricing"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestRouter(svc *Service, user uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(common.WithUserID(req.Context(), user)))
		})
	})
	NewHandler(svc).Routes(r)
	return r
}

func post(t *testing.T, h http.Handler, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func TestHandlerEvaluate(t *testing.T) {
	q := newStubQueries()
	owner := uuid.New()
	id := seedCoupon(q, owner, dbgen.DiscountKindPERCENT, "10", "50000", 1)
	h := newTestRouter(newService(q), owner)

	rr, env := post(t, h, "/coupons/"+id.String()+"/evaluate", map[string]any{"subtotal": "100000"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var eval Evaluation
	require.NoError(t, json.Unmarshal(env.Data, &eval))
	require.True(t, eval.Discount.Equal(pricing.MustParse("10000")), "discount %s", eval.Discount)

	rr, env = post(t, h, "/coupons/"+id.String()+"/evaluate", map[string]any{"subtotal": "1000"})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "MIN_ORDER_NOT_MET", env.Error.Code)

	rr, _ = post(t, h, "/coupons/"+id.String()+"/evaluate", map[string]any{"subtotal": "-1"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr, env = post(t, h, "/coupons/"+uuid.NewString()+"/evaluate", map[string]any{"subtotal": "100000"})
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "COUPON_NOT_FOUND", env.Error.Code)
}

func TestHandlerSettle(t *testing.T) {
	q := newStubQueries()
	owner := uuid.New()
	id := seedCoupon(q, owner, dbgen.DiscountKindFIXEDAMOUNT, "5000", "0", 1)
	h := newTestRouter(newService(q), owner)
	order := uuid.NewString()

	rr, _ := post(t, h, "/coupons/"+id.String()+"/usages", map[string]any{"orderId": order, "amount": "5000"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr, _ = post(t, h, "/coupons/"+id.String()+"/usages", map[string]any{"orderId": order, "amount": "5000"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, int32(1), q.coupons[id].UsedCount)

	rr, env := post(t, h, "/coupons/"+id.String()+"/usages", map[string]any{"orderId": uuid.NewString(), "amount": "5000"})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Equal(t, "COUPON_EXHAUSTED", env.Error.Code)

	rr, env = post(t, h, "/coupons/"+id.String()+"/usages", map[string]any{"orderId": "nope"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}
