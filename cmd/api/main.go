package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/toko-ledger/internal/app"
	"github.com/noah-isme/toko-ledger/internal/auth"
	"github.com/noah-isme/toko-ledger/internal/cart"
	"github.com/noah-isme/toko-ledger/internal/catalog"
	"github.com/noah-isme/toko-ledger/internal/common"
	"github.com/noah-isme/toko-ledger/internal/config"
	"github.com/noah-isme/toko-ledger/internal/coupon"
	"github.com/noah-isme/toko-ledger/internal/db"
	"github.com/noah-isme/toko-ledger/internal/gateway"
	"github.com/noah-isme/toko-ledger/internal/health"
	"github.com/noah-isme/toko-ledger/internal/lock"
	"github.com/noah-isme/toko-ledger/internal/obs"
	"github.com/noah-isme/toko-ledger/internal/ratelimit"
	"github.com/noah-isme/toko-ledger/internal/security"
	"github.com/noah-isme/toko-ledger/internal/wallet"
)

const serviceName = "toko-ledger-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := app.Logger(cfg, "api")

	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)

	shutdownTracer, err := obs.InitTracer(context.Background(), obs.TracingConfig{
		Enabled:       cfg.Obs.EnableTracing,
		ServiceName:   serviceName,
		Endpoint:      cfg.Obs.OTLPEndpoint,
		SamplingRatio: cfg.Obs.SamplingRatio,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error().Err(err).Msg("shutdown tracer")
			}
		}()
	}

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

	redisClient, err := app.OpenRedis(startCtx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	bus, closeBus := app.EventBus(cfg, store, logger)
	defer func() {
		if err := closeBus(); err != nil {
			logger.Error().Err(err).Msg("close event writer")
		}
	}()

	cartSvc := &cart.Service{
		Store:   cart.NewPGStore(store),
		Catalog: &catalog.Service{Q: store.Q},
		Cache:   cart.NewRedisCache(redisClient, cfg.CartCacheTTL),
		Locker:  lock.Locker{R: redisClient, RetryBackoff: 25 * time.Millisecond, MaxWait: cfg.CartLockTTL},
		LockTTL: cfg.CartLockTTL,
		Events:  bus,
		Logger:  logger.With().Str("module", "cart").Logger(),
	}

	gatewayClient := app.GatewayClient(cfg, logger)
	ledger := app.Ledger(cfg, store, gatewayClient, bus, logger)
	webhook := gateway.Webhook{
		Client:    gatewayClient,
		Confirmer: ledger,
		Replay:    redisClient,
		ReplayTTL: cfg.WebhookReplayTTL,
		Logger:    logger.With().Str("module", "gateway").Logger(),
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise token verifier")
	}
	authMiddleware := auth.Middleware{Verifier: verifier}

	limiter, err := ratelimit.New(redisClient, cfg.RateLimit, "ratelimit")
	if err != nil {
		logger.Fatal().Err(err).Str("rate", cfg.RateLimit).Msg("initialise rate limiter")
	}
	rateLimit := ratelimit.Handler{
		Limiter: limiter,
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limit store unavailable") },
	}
	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	healthHandler := &health.Handler{
		Checks: map[string]health.Check{
			"postgres": pool.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
	}

	httpMetrics := obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.LatencyBuckets), nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{HSTSMaxAge: cfg.HSTSMaxAge}.Middleware)
	r.Use(security.BodyLimit{Max: cfg.MaxBodyBytes}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Get("/webhooks/payment/{gateway}", webhook.Handle)
		v.Post("/webhooks/payment/{gateway}", webhook.Handle)

		v.Group(func(authR chi.Router) {
			authR.Use(authMiddleware.RequireAuth)
			authR.Use(rateLimit.Middleware)
			authR.Use(idem.Middleware)
			cart.NewHandler(cartSvc).Routes(authR)
			wallet.NewHandler(ledger).Routes(authR)
			coupon.NewHandler(app.Coupons(store)).Routes(authR)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           otelhttp.NewHandler(r, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	<-ctx.Done()
	shutdown(srv, healthHandler, cfg.ShutdownTimeout, logger)
}

// shutdown fails readiness first, then drains in-flight requests.
func shutdown(srv *http.Server, h *health.Handler, timeout time.Duration, logger zerolog.Logger) {
	h.Drain()
	logger.Info().Dur("timeout", timeout).Msg("server draining")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
