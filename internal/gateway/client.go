package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-ledger/internal/obs"
	"github.com/noah-isme/toko-ledger/internal/resilience"
)

// Client routes payment creation to a provider through its circuit breaker.
type Client struct {
	providers map[Name]Provider
	breakers  map[Name]*resilience.Breaker
	logger    zerolog.Logger
}

// NewClient registers providers, each behind its own breaker built from settings.
func NewClient(settings resilience.Settings, logger zerolog.Logger, providers ...Provider) *Client {
	c := &Client{
		providers: make(map[Name]Provider, len(providers)),
		breakers:  make(map[Name]*resilience.Breaker, len(providers)),
		logger:    logger,
	}
	for _, p := range providers {
		st := settings
		st.Target = string(p.Name())
		st.Logger = logger
		st.IsFailure = func(err error) bool { return !errors.Is(err, ErrInvalidRequest) }
		c.providers[p.Name()] = p
		c.breakers[p.Name()] = resilience.NewBreaker(st)
	}
	return c
}

// Provider returns the registered provider for name.
func (c *Client) Provider(name Name) (Provider, bool) {
	if c == nil {
		return nil, false
	}
	p, ok := c.providers[name]
	return p, ok
}

// CreatePayment opens a payment with the named provider.
// An open circuit is reported as ErrGatewayUnavailable without calling the provider.
func (c *Client) CreatePayment(ctx context.Context, name Name, req PaymentRequest) (PaymentResponse, error) {
	p, ok := c.Provider(name)
	if !ok {
		return PaymentResponse{}, fmt.Errorf("%w: %s", ErrUnknownGateway, name)
	}
	resp, err := resilience.Call(ctx, c.breakers[name], func(ctx context.Context) (PaymentResponse, error) {
		return p.CreatePayment(ctx, req)
	})
	switch {
	case err == nil:
		obs.ObserveGatewayRequest(string(name), "ok")
		return resp, nil
	case errors.Is(err, resilience.ErrOpenCircuit):
		obs.ObserveGatewayRequest(string(name), "rejected")
		return PaymentResponse{}, fmt.Errorf("%w: %s", ErrGatewayUnavailable, name)
	default:
		obs.ObserveGatewayRequest(string(name), "error")
		c.logger.Error().Err(err).Str("gateway", string(name)).Str("reference", req.Reference).Msg("gateway_create_payment_failed")
		return PaymentResponse{}, fmt.Errorf("%s create payment: %w", name, err)
	}
}
