// Package app holds the process bootstrap shared by the API and worker binaries.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-ledger/internal/config"
	"github.com/noah-isme/toko-ledger/internal/coupon"
	"github.com/noah-isme/toko-ledger/internal/db"
	"github.com/noah-isme/toko-ledger/internal/events"
	"github.com/noah-isme/toko-ledger/internal/gateway"
	"github.com/noah-isme/toko-ledger/internal/obs"
	"github.com/noah-isme/toko-ledger/internal/resilience"
	"github.com/noah-isme/toko-ledger/internal/wallet"
)

// Logger builds the process logger for a component.
func Logger(cfg *config.Config, component string) zerolog.Logger {
	return obs.NewLogger(obs.LoggerOptions{
		Format:    cfg.Obs.LogFormat,
		Level:     cfg.Obs.LogLevel,
		Env:       cfg.AppEnv,
		Component: component,
	})
}

// OpenPool connects to Postgres with the query tracer installed.
func OpenPool(ctx context.Context, cfg *config.Config, applicationName string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// OpenRedis connects to Redis with tracing and metrics instrumentation.
func OpenRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisotel.InstrumentMetrics(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis metrics")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// EventBus persists events through store and fans them out to the log and, when brokers are set, Kafka.
// The returned close func flushes the Kafka writer.
func EventBus(cfg *config.Config, store *db.Store, logger zerolog.Logger) (*events.Bus, func() error) {
	bus := &events.Bus{
		Store:     store.Q,
		Notifiers: []events.Notifier{events.LogNotifier{Logger: logger}},
	}
	if len(cfg.KafkaBrokers) == 0 {
		return bus, func() error { return nil }
	}
	writer := events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
	bus.Notifiers = append(bus.Notifiers, events.KafkaNotifier{Writer: writer})
	return bus, writer.Close
}

// GatewayClient registers the VNPay and MoMo providers behind per-provider breakers.
func GatewayClient(cfg *config.Config, logger zerolog.Logger) *gateway.Client {
	settings := resilience.Settings{
		MaxFailures: cfg.BreakerMaxFailures,
		OpenFor:     cfg.BreakerOpenFor,
	}
	return gateway.NewClient(settings, logger,
		gateway.VNPayProvider{
			TmnCode:    cfg.VNPay.TmnCode,
			HashSecret: cfg.VNPay.HashSecret,
			BaseURL:    cfg.VNPay.BaseURL,
			ReturnURL:  cfg.VNPay.ReturnURL,
		},
		gateway.MoMoProvider{
			PartnerCode: cfg.MoMo.PartnerCode,
			AccessKey:   cfg.MoMo.AccessKey,
			SecretKey:   cfg.MoMo.SecretKey,
			BaseURL:     cfg.MoMo.BaseURL,
			IPNURL:      cfg.MoMo.IPNURL,
			RedirectURL: cfg.MoMo.RedirectURL,
		},
	)
}

// Ledger wires the wallet ledger to Postgres, the gateway client and the event bus.
func Ledger(cfg *config.Config, store *db.Store, client *gateway.Client, bus events.Emitter, logger zerolog.Logger) *wallet.Ledger {
	return &wallet.Ledger{
		Store:          wallet.NewPGStore(store),
		Gateway:        client,
		DefaultGateway: gateway.Name(cfg.DefaultGateway),
		MinTopUp:       cfg.WalletMinTopUp,
		Events:         bus,
		Logger:         logger.With().Str("module", "wallet").Logger(),
	}
}

// Coupons wires coupon evaluation and usage settlement to Postgres.
func Coupons(store *db.Store) *coupon.Service {
	return &coupon.Service{Store: coupon.NewPGStore(store)}
}
