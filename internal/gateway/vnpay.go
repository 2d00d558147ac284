package gateway

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/common"
)

var vnpayLocation = time.FixedZone("ICT", 7*60*60)

// VNPayProvider signs pay URLs and verifies IPN callbacks with HMAC-SHA512.
type VNPayProvider struct {
	TmnCode    string
	HashSecret string
	BaseURL    string
	ReturnURL  string
	Now        func() time.Time
}

func (v VNPayProvider) Name() Name { return VNPay }

func (v VNPayProvider) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// CreatePayment builds a signed redirect URL; no network call is made.
// vnp_Amount is expressed in the smallest unit (amount x 100).
func (v VNPayProvider) CreatePayment(_ context.Context, req PaymentRequest) (PaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return PaymentResponse{}, err
	}
	ip := req.ClientIP
	if ip == "" {
		ip = "127.0.0.1"
	}
	info := req.Description
	if info == "" {
		info = "Wallet top-up " + req.Reference
	}
	now := v.now().In(vnpayLocation)
	params := url.Values{}
	params.Set("vnp_Version", "2.1.0")
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", v.TmnCode)
	params.Set("vnp_Amount", req.Amount.Mul(decimal.NewFromInt(100)).Truncate(0).String())
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", req.Reference)
	params.Set("vnp_OrderInfo", info)
	params.Set("vnp_OrderType", "topup")
	params.Set("vnp_Locale", "vn")
	params.Set("vnp_ReturnUrl", v.ReturnURL)
	params.Set("vnp_IpAddr", ip)
	params.Set("vnp_CreateDate", now.Format("20060102150405"))
	params.Set("vnp_ExpireDate", now.Add(15*time.Minute).Format("20060102150405"))

	signData := canonicalQuery(params)
	signature := common.HMACSHA512Hex(v.HashSecret, signData)
	payURL := strings.TrimRight(v.BaseURL, "?") + "?" + signData + "&vnp_SecureHash=" + signature
	return PaymentResponse{Gateway: VNPay, TransactionID: req.Reference, PayURL: payURL}, nil
}

// VerifyCallback validates the IPN query string.
func (v VNPayProvider) VerifyCallback(r *http.Request, _ []byte) CallbackResult {
	res := CallbackResult{Gateway: VNPay}
	query := r.URL.Query()
	res.Payload = []byte(r.URL.RawQuery)

	provided := query.Get("vnp_SecureHash")
	signed := url.Values{}
	for key, values := range query {
		if !strings.HasPrefix(key, "vnp_") || key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			signed.Set(key, values[0])
		}
	}
	expected := common.HMACSHA512Hex(v.HashSecret, canonicalQuery(signed))
	if v.HashSecret == "" || !common.EqualHex(expected, provided) {
		res.Err = ErrInvalidSignature
		return res
	}
	if query.Get("vnp_TmnCode") != v.TmnCode {
		res.Err = ErrInvalidSignature
		return res
	}
	res.TransactionID = query.Get("vnp_TxnRef")
	if raw := query.Get("vnp_Amount"); raw != "" {
		minor, err := decimal.NewFromString(raw)
		if err != nil {
			res.Err = err
			return res
		}
		amount := minor.Div(decimal.NewFromInt(100))
		res.Amount = &amount
	}
	if query.Get("vnp_ResponseCode") == "00" && query.Get("vnp_TransactionStatus") == "00" {
		res.Status = StatusSuccess
	} else {
		res.Status = StatusFailed
	}
	res.Valid = res.TransactionID != ""
	return res
}

// Acknowledge writes the RspCode JSON body VNPay expects with HTTP 200.
func (v VNPayProvider) Acknowledge(w http.ResponseWriter, outcome AckOutcome) {
	code, msg := "00", "Confirm Success"
	switch outcome {
	case AckNotFound:
		code, msg = "01", "Order not found"
	case AckInvalid:
		code, msg = "97", "Invalid signature"
	case AckError:
		code, msg = "99", "Unknown error"
	}
	common.JSON(w, http.StatusOK, map[string]string{"RspCode": code, "Message": msg})
}

// canonicalQuery sorts keys and form-encodes values the way VNPay hashes them.
func canonicalQuery(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params.Get(k)))
	}
	return b.String()
}
