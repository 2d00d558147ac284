package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-ledger/internal/app"
	"github.com/noah-isme/toko-ledger/internal/config"
	"github.com/noah-isme/toko-ledger/internal/db"
	"github.com/noah-isme/toko-ledger/internal/obs"
	"github.com/noah-isme/toko-ledger/internal/wallet"
)

const (
	serviceName    = "toko-ledger-worker"
	expirySchedule = "@every 1m"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := app.Logger(cfg, "worker")

	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := app.OpenPool(startCtx, cfg, serviceName)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer pool.Close()
	store := db.NewStore(pool)

	bus, closeBus := app.EventBus(cfg, store, logger)
	defer func() {
		if err := closeBus(); err != nil {
			logger.Error().Err(err).Msg("close event writer")
		}
	}()
	ledger := app.Ledger(cfg, store, app.GatewayClient(cfg, logger), bus, logger)

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	taskLogger := asynqLogger{logger: logger.With().Str("module", "asynq").Logger()}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     2,
		Logger:          taskLogger,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Queues:          map[string]int{"default": 1},
	})
	mux := asynq.NewServeMux()
	mux.Handle(wallet.TypeExpirePending, wallet.ExpiryHandler{Ledger: ledger, Logger: logger})

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   taskLogger,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("enqueue expiry task")
			}
		},
	})
	task, err := wallet.NewExpireTask(cfg.WalletPendingTTL, cfg.WalletExpiryBatch)
	if err != nil {
		logger.Fatal().Err(err).Msg("build expiry task")
	}
	if _, err := scheduler.Register(expirySchedule, task); err != nil {
		logger.Fatal().Err(err).Msg("register expiry schedule")
	}

	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start task server")
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start scheduler")
	}
	logger.Info().
		Str("schedule", expirySchedule).
		Dur("pending_ttl", cfg.WalletPendingTTL).
		Int("batch", cfg.WalletExpiryBatch).
		Msg("worker starting")

	<-ctx.Done()
	scheduler.Shutdown()
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

// asynqLogger routes asynq's internal logs through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
