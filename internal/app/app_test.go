package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-ledger/internal/config"
	"github.com/noah-isme/toko-ledger/internal/db"
	"github.com/noah-isme/toko-ledger/internal/gateway"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadForTests(map[string]string{
		"DATABASE_URL":      "postgres://localhost/toko",
		"REDIS_URL":         "redis://localhost:6379/0",
		"JWT_SECRET":        "secret",
		"VNPAY_TMN_CODE":    "TMN01",
		"VNPAY_HASH_SECRET": "vnpay-secret",
		"VNPAY_RETURN_URL":  "https://shop.example/return",
		"MOMO_PARTNER_CODE": "MOMO01",
		"MOMO_ACCESS_KEY":   "access",
		"MOMO_SECRET_KEY":   "momo-secret",
		"MOMO_IPN_URL":      "https://shop.example/ipn",
		"MOMO_REDIRECT_URL": "https://shop.example/return",
		"KAFKA_BROKERS":     "",
	})
	require.NoError(t, err)
	return cfg
}

func TestGatewayClientRegistersProviders(t *testing.T) {
	cfg := testConfig(t)
	client := GatewayClient(cfg, Logger(cfg, "test"))

	for _, name := range []gateway.Name{gateway.VNPay, gateway.MoMo} {
		_, ok := client.Provider(name)
		require.Truef(t, ok, "provider %s not registered", name)
	}

	resp, err := client.CreatePayment(context.Background(), gateway.MoMo, gateway.PaymentRequest{
		Reference: uuid.NewString(),
		UserID:    uuid.New(),
		Amount:    decimal.NewFromInt(50000),
	})
	require.NoError(t, err)
	require.Equal(t, gateway.MoMo, resp.Gateway)
	require.NotEmpty(t, resp.PayURL)
}

func TestEventBusWithoutBrokers(t *testing.T) {
	cfg := testConfig(t)
	bus, closeFn := EventBus(cfg, &db.Store{}, Logger(cfg, "test"))
	require.Len(t, bus.Notifiers, 1)
	require.NoError(t, closeFn())
}

func TestLedgerUsesConfiguredDefaults(t *testing.T) {
	cfg := testConfig(t)
	ledger := Ledger(cfg, &db.Store{}, GatewayClient(cfg, Logger(cfg, "test")), nil, Logger(cfg, "test"))
	require.Equal(t, gateway.VNPay, ledger.DefaultGateway)
	require.True(t, ledger.MinTopUp.Equal(decimal.NewFromInt(1000)))
}

func TestCouponsUsesPostgresStore(t *testing.T) {
	svc := Coupons(&db.Store{})
	require.NotNil(t, svc.Store)
	require.Nil(t, svc.Now)
}
