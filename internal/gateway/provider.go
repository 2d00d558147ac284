package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Name identifies a payment provider.
type Name string

const (
	VNPay Name = "vnpay"
	MoMo  Name = "momo"
)

// ParseName normalises a provider name from config or a URL segment.
func ParseName(s string) (Name, error) {
	switch n := Name(strings.ToLower(strings.TrimSpace(s))); n {
	case VNPay, MoMo:
		return n, nil
	default:
		return "", ErrUnknownGateway
	}
}

// Status is the provider-reported outcome of a payment.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

var (
	// ErrUnknownGateway is returned for providers that are not configured.
	ErrUnknownGateway = errors.New("payment gateway not supported")
	// ErrGatewayUnavailable is returned while the provider's circuit is open.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrInvalidSignature is reported when a callback fails verification.
	ErrInvalidSignature = errors.New("invalid callback signature")
	// ErrInvalidRequest is returned when a payment request is incomplete.
	ErrInvalidRequest = errors.New("invalid payment request")
)

// PaymentRequest describes a payment to open with a provider.
type PaymentRequest struct {
	// Reference is our transaction reference; providers echo it back as the gateway transaction id.
	Reference   string
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Description string
	ClientIP    string
}

// PaymentResponse is what the caller needs to redirect the user.
type PaymentResponse struct {
	Gateway       Name
	TransactionID string
	PayURL        string
}

// CallbackResult is the verified, normalised content of a provider callback.
type CallbackResult struct {
	Gateway       Name
	Valid         bool
	TransactionID string
	Status        Status
	Amount        *decimal.Decimal
	Payload       []byte
	Err           error
}

// AckOutcome selects the acknowledgement a provider expects.
type AckOutcome int

const (
	AckOK AckOutcome = iota
	AckNotFound
	AckInvalid
	AckError
)

// Provider abstracts one upstream payment provider.
type Provider interface {
	Name() Name
	CreatePayment(ctx context.Context, req PaymentRequest) (PaymentResponse, error)
	VerifyCallback(r *http.Request, body []byte) CallbackResult
	Acknowledge(w http.ResponseWriter, outcome AckOutcome)
}

func validateRequest(req PaymentRequest) error {
	if strings.TrimSpace(req.Reference) == "" {
		return errors.Join(ErrInvalidRequest, errors.New("reference is required"))
	}
	if !req.Amount.IsPositive() {
		return errors.Join(ErrInvalidRequest, errors.New("amount must be positive"))
	}
	return nil
}
