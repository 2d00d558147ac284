package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-ledger/internal/common"
)

// MoMoProvider signs payment requests and verifies JSON IPN callbacks with HMAC-SHA256.
type MoMoProvider struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	BaseURL     string
	IPNURL      string
	RedirectURL string
}

func (m MoMoProvider) Name() Name { return MoMo }

// CreatePayment synthesises a signed pay URL for the captureWallet flow; no network call is made.
func (m MoMoProvider) CreatePayment(_ context.Context, req PaymentRequest) (PaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return PaymentResponse{}, err
	}
	if !req.Amount.IsInteger() {
		return PaymentResponse{}, errors.Join(ErrInvalidRequest, errors.New("momo amount must be whole VND"))
	}
	info := req.Description
	if info == "" {
		info = "Wallet top-up " + req.Reference
	}
	amount := req.Amount.StringFixed(0)
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=captureWallet",
		m.AccessKey, amount, m.IPNURL, req.Reference, info, m.PartnerCode, m.RedirectURL, req.Reference,
	)
	params := url.Values{}
	params.Set("partnerCode", m.PartnerCode)
	params.Set("orderId", req.Reference)
	params.Set("requestId", req.Reference)
	params.Set("amount", amount)
	params.Set("orderInfo", info)
	params.Set("requestType", "captureWallet")
	params.Set("signature", common.HMACSHA256Hex(m.SecretKey, raw))
	payURL := strings.TrimRight(m.BaseURL, "?") + "?" + params.Encode()
	return PaymentResponse{Gateway: MoMo, TransactionID: req.Reference, PayURL: payURL}, nil
}

type momoIPN struct {
	PartnerCode  string      `json:"partnerCode"`
	OrderID      string      `json:"orderId"`
	RequestID    string      `json:"requestId"`
	Amount       json.Number `json:"amount"`
	OrderInfo    string      `json:"orderInfo"`
	OrderType    string      `json:"orderType"`
	TransID      json.Number `json:"transId"`
	ResultCode   json.Number `json:"resultCode"`
	Message      string      `json:"message"`
	PayType      string      `json:"payType"`
	ResponseTime json.Number `json:"responseTime"`
	ExtraData    string      `json:"extraData"`
	Signature    string      `json:"signature"`
}

func (p momoIPN) rawSignature(accessKey string) string {
	return fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
		accessKey, p.Amount, p.ExtraData, p.Message, p.OrderID, p.OrderInfo, p.OrderType,
		p.PartnerCode, p.PayType, p.RequestID, p.ResponseTime, p.ResultCode, p.TransID,
	)
}

// VerifyCallback validates the IPN JSON body. resultCode 0 is success; 9000 (authorised) and 7000 (processing) stay pending.
func (m MoMoProvider) VerifyCallback(_ *http.Request, body []byte) CallbackResult {
	res := CallbackResult{Gateway: MoMo, Payload: body}
	var payload momoIPN
	if err := json.Unmarshal(body, &payload); err != nil {
		res.Err = err
		return res
	}
	expected := common.HMACSHA256Hex(m.SecretKey, payload.rawSignature(m.AccessKey))
	if m.SecretKey == "" || !common.EqualHex(expected, payload.Signature) || payload.PartnerCode != m.PartnerCode {
		res.Err = ErrInvalidSignature
		return res
	}
	res.TransactionID = payload.OrderID
	if payload.Amount != "" {
		amount, err := decimal.NewFromString(payload.Amount.String())
		if err != nil {
			res.Err = err
			return res
		}
		res.Amount = &amount
	}
	switch payload.ResultCode.String() {
	case "0":
		res.Status = StatusSuccess
	case "9000", "7000", "7002", "1000":
		res.Status = StatusPending
	default:
		res.Status = StatusFailed
	}
	res.Valid = res.TransactionID != ""
	return res
}

// Acknowledge answers MoMo with 204; anything else makes it retry.
func (m MoMoProvider) Acknowledge(w http.ResponseWriter, outcome AckOutcome) {
	switch outcome {
	case AckOK, AckNotFound:
		w.WriteHeader(http.StatusNoContent)
	case AckInvalid:
		common.JSONError(w, http.StatusBadRequest, "INVALID_SIGNATURE", ErrInvalidSignature.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "CALLBACK_FAILED", "callback processing failed", nil)
	}
}
