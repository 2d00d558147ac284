package gateway

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-ledger/internal/resilience"
)

type recordingConfirmer struct {
	mu    sync.Mutex
	calls []CallbackResult
	found bool
	err   error
}

func (c *recordingConfirmer) ConfirmCallback(_ context.Context, res CallbackResult) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, res)
	return c.found, c.err
}

func newWebhookRouter(t *testing.T, confirmer Confirmer) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	hook := Webhook{
		Client:    NewClient(resilience.Settings{}, zerolog.Nop(), testVNPay(), testMoMo()),
		Confirmer: confirmer,
		Replay:    client,
		ReplayTTL: time.Hour,
	}
	r := chi.NewRouter()
	r.Get("/webhooks/payment/{gateway}", hook.Handle)
	r.Post("/webhooks/payment/{gateway}", hook.Handle)
	return r, mr
}

func TestWebhookVNPayDuplicateConfirmsOnce(t *testing.T) {
	confirmer := &recordingConfirmer{found: true}
	h, _ := newWebhookRouter(t, confirmer)
	v := testVNPay()

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, signedVNPayCallback(v, "tx-1", "10000000", "00", "00"))
		require.Equal(t, http.StatusOK, rr.Code)
		require.Contains(t, rr.Body.String(), `"RspCode":"00"`)
	}
	require.Len(t, confirmer.calls, 1)
	require.Equal(t, StatusSuccess, confirmer.calls[0].Status)
	require.Equal(t, "tx-1", confirmer.calls[0].TransactionID)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	confirmer := &recordingConfirmer{found: true}
	h, _ := newWebhookRouter(t, confirmer)

	req := httptest.NewRequest(http.MethodGet, "/webhooks/payment/vnpay?vnp_TxnRef=tx-1&vnp_SecureHash=abcd", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Contains(t, rr.Body.String(), `"RspCode":"97"`)
	require.Empty(t, confirmer.calls)
}

func TestWebhookReleasesReplayKeyOnError(t *testing.T) {
	confirmer := &recordingConfirmer{err: errors.New("db down")}
	h, mr := newWebhookRouter(t, confirmer)
	m := testMoMo()
	body := signedMoMoIPN(m, "tx-9", "50000", "0")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhooks/payment/momo", bytes.NewReader(body)))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Empty(t, mr.Keys())

	confirmer.err = nil
	confirmer.found = true
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhooks/payment/momo", bytes.NewReader(body)))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, confirmer.calls, 2)
}

func TestWebhookUnmatchedAndPending(t *testing.T) {
	confirmer := &recordingConfirmer{found: false}
	h, _ := newWebhookRouter(t, confirmer)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, signedVNPayCallback(testVNPay(), "missing", "100000", "00", "00"))
	require.Contains(t, rr.Body.String(), `"RspCode":"01"`)

	m := testMoMo()
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhooks/payment/momo", bytes.NewReader(signedMoMoIPN(m, "tx-7", "1000", "9000"))))
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Len(t, confirmer.calls, 1, "pending callbacks are acknowledged without confirming")
}

func TestWebhookUnknownProvider(t *testing.T) {
	h, _ := newWebhookRouter(t, &recordingConfirmer{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhooks/payment/paypal", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
