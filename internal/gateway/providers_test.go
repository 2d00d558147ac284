package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-ledger/internal/common"
)

func testVNPay() VNPayProvider {
	return VNPayProvider{
		TmnCode:    "TOKO0001",
		HashSecret: "vnpay-secret",
		BaseURL:    "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://toko.example/wallet/return",
		Now:        func() time.Time { return time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC) },
	}
}

func signedVNPayCallback(v VNPayProvider, ref, amountMinor, responseCode, txStatus string) *http.Request {
	params := url.Values{}
	params.Set("vnp_TmnCode", v.TmnCode)
	params.Set("vnp_TxnRef", ref)
	params.Set("vnp_Amount", amountMinor)
	params.Set("vnp_ResponseCode", responseCode)
	params.Set("vnp_TransactionStatus", txStatus)
	params.Set("vnp_OrderInfo", "Wallet top-up")
	params.Set("vnp_TransactionNo", "14226112")
	query := canonicalQuery(params)
	query += "&vnp_SecureHashType=HmacSHA512&vnp_SecureHash=" + common.HMACSHA512Hex(v.HashSecret, query)
	return httptest.NewRequest(http.MethodGet, "/webhooks/payment/vnpay?"+query, nil)
}

func TestVNPayCreatePaymentSignsURL(t *testing.T) {
	v := testVNPay()
	resp, err := v.CreatePayment(context.Background(), PaymentRequest{
		Reference: "tx-1",
		Amount:    decimal.RequireFromString("100000"),
		ClientIP:  "10.0.0.1",
	})
	require.NoError(t, err)
	require.Equal(t, VNPay, resp.Gateway)
	require.Equal(t, "tx-1", resp.TransactionID)

	u, err := url.Parse(resp.PayURL)
	require.NoError(t, err)
	q := u.Query()
	require.Equal(t, "10000000", q.Get("vnp_Amount"))
	require.Equal(t, "20260301100000", q.Get("vnp_CreateDate"))
	require.Equal(t, "tx-1", q.Get("vnp_TxnRef"))

	provided := q.Get("vnp_SecureHash")
	q.Del("vnp_SecureHash")
	require.Equal(t, common.HMACSHA512Hex(v.HashSecret, canonicalQuery(q)), provided)
}

func TestVNPayCreatePaymentValidates(t *testing.T) {
	_, err := testVNPay().CreatePayment(context.Background(), PaymentRequest{Reference: "x", Amount: decimal.Zero})
	require.ErrorIs(t, err, ErrInvalidRequest)
	_, err = testVNPay().CreatePayment(context.Background(), PaymentRequest{Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestVNPayVerifyCallback(t *testing.T) {
	v := testVNPay()
	res := v.VerifyCallback(signedVNPayCallback(v, "tx-1", "10000000", "00", "00"), nil)
	require.True(t, res.Valid, "%v", res.Err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Equal(t, "tx-1", res.TransactionID)
	require.NotNil(t, res.Amount)
	require.True(t, decimal.RequireFromString("100000").Equal(*res.Amount))

	res = v.VerifyCallback(signedVNPayCallback(v, "tx-2", "500000", "24", "02"), nil)
	require.True(t, res.Valid)
	require.Equal(t, StatusFailed, res.Status)

	tampered := signedVNPayCallback(v, "tx-1", "10000000", "00", "00")
	tampered.URL.RawQuery = strings.Replace(tampered.URL.RawQuery, "vnp_Amount=10000000", "vnp_Amount=99900000", 1)
	res = v.VerifyCallback(tampered, nil)
	require.False(t, res.Valid)
	require.ErrorIs(t, res.Err, ErrInvalidSignature)
}

func TestVNPayAcknowledge(t *testing.T) {
	cases := map[AckOutcome]string{AckOK: "00", AckNotFound: "01", AckInvalid: "97", AckError: "99"}
	for outcome, code := range cases {
		rr := httptest.NewRecorder()
		testVNPay().Acknowledge(rr, outcome)
		require.Equal(t, http.StatusOK, rr.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Equal(t, code, body["RspCode"])
	}
}

func testMoMo() MoMoProvider {
	return MoMoProvider{
		PartnerCode: "MOMOTOKO",
		AccessKey:   "access",
		SecretKey:   "momo-secret",
		BaseURL:     "https://test-payment.momo.vn/v2/gateway/pay",
		IPNURL:      "https://toko.example/api/v1/webhooks/payment/momo",
		RedirectURL: "https://toko.example/wallet/return",
	}
}

func signedMoMoIPN(m MoMoProvider, orderID, amount, resultCode string) []byte {
	p := momoIPN{
		PartnerCode:  m.PartnerCode,
		OrderID:      orderID,
		RequestID:    orderID,
		Amount:       json.Number(amount),
		OrderInfo:    "Wallet top-up",
		OrderType:    "momo_wallet",
		TransID:      json.Number("4088878653"),
		ResultCode:   json.Number(resultCode),
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: json.Number("1721720663942"),
	}
	p.Signature = common.HMACSHA256Hex(m.SecretKey, p.rawSignature(m.AccessKey))
	body, _ := json.Marshal(p)
	return body
}

func TestMoMoCreatePayment(t *testing.T) {
	resp, err := testMoMo().CreatePayment(context.Background(), PaymentRequest{Reference: "tx-9", Amount: decimal.RequireFromString("50000")})
	require.NoError(t, err)
	require.Equal(t, "tx-9", resp.TransactionID)
	u, err := url.Parse(resp.PayURL)
	require.NoError(t, err)
	require.Equal(t, "50000", u.Query().Get("amount"))
	require.Len(t, u.Query().Get("signature"), 64)
}

func TestMoMoCreatePaymentRejectsFractionalAmount(t *testing.T) {
	_, err := testMoMo().CreatePayment(context.Background(), PaymentRequest{Reference: "tx-9", Amount: decimal.RequireFromString("10000.50")})
	require.ErrorIs(t, err, ErrInvalidRequest)

	resp, err := testMoMo().CreatePayment(context.Background(), PaymentRequest{Reference: "tx-9", Amount: decimal.RequireFromString("10000.00")})
	require.NoError(t, err)
	u, err := url.Parse(resp.PayURL)
	require.NoError(t, err)
	require.Equal(t, "10000", u.Query().Get("amount"))
}

func TestMoMoVerifyCallback(t *testing.T) {
	m := testMoMo()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment/momo", nil)

	res := m.VerifyCallback(req, signedMoMoIPN(m, "tx-9", "50000", "0"))
	require.True(t, res.Valid, "%v", res.Err)
	require.Equal(t, StatusSuccess, res.Status)
	require.True(t, decimal.RequireFromString("50000").Equal(*res.Amount))

	res = m.VerifyCallback(req, signedMoMoIPN(m, "tx-9", "50000", "1006"))
	require.Equal(t, StatusFailed, res.Status)

	res = m.VerifyCallback(req, signedMoMoIPN(m, "tx-9", "50000", "9000"))
	require.Equal(t, StatusPending, res.Status)

	other := m
	other.SecretKey = "wrong"
	res = m.VerifyCallback(req, signedMoMoIPN(other, "tx-9", "50000", "0"))
	require.False(t, res.Valid)

	res = m.VerifyCallback(req, []byte("{"))
	require.False(t, res.Valid)
	require.Error(t, res.Err)
}

func TestParseName(t *testing.T) {
	n, err := ParseName(" VNPay ")
	require.NoError(t, err)
	require.Equal(t, VNPay, n)
	_, err = ParseName("paypal")
	require.ErrorIs(t, err, ErrUnknownGateway)
}
