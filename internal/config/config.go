package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	CORSAllowedOrigins []string
	RateLimit          string
	IdempotencyTTL     time.Duration
	MaxBodyBytes       int64
	HSTSMaxAge         int
	ShutdownTimeout    time.Duration

	CartCacheTTL time.Duration
	CartLockTTL  time.Duration

	WalletMinTopUp     decimal.Decimal
	WalletPendingTTL   time.Duration
	WalletExpiryBatch  int
	DefaultGateway     string
	BreakerMaxFailures uint32
	BreakerOpenFor     time.Duration
	WebhookReplayTTL   time.Duration
	VNPay              VNPayConfig
	MoMo               MoMoConfig

	KafkaBrokers []string
	KafkaTopic   string

	Obs ObsConfig
}

// VNPayConfig holds merchant credentials for the VNPay provider.
type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	BaseURL    string
	ReturnURL  string
}

// MoMoConfig holds merchant credentials for the MoMo provider.
type MoMoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	BaseURL     string
	IPNURL      string
	RedirectURL string
}

// ObsConfig configures logging, metrics and tracing.
type ObsConfig struct {
	LogFormat        string
	LogLevel         string
	EnableTracing    bool
	OTLPEndpoint     string
	SamplingRatio    float64
	MetricsNamespace string
	LatencyBuckets   string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	minTopUp, err := decimal.NewFromString(valueOrDefault(k.String("WALLET_MIN_TOPUP"), "1000"))
	if err != nil || minTopUp.IsNegative() {
		return nil, errors.New("WALLET_MIN_TOPUP must be a non-negative decimal")
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		JWTIssuer:          strings.TrimSpace(k.String("JWT_ISSUER")),
		JWTAudience:        strings.TrimSpace(k.String("JWT_AUDIENCE")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		RateLimit:          valueOrDefault(k.String("RATE_LIMIT"), "100-M"),
		IdempotencyTTL:     parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		MaxBodyBytes:       int64(parseInt(k.String("HTTP_MAX_BODY_BYTES"), 1<<20)),
		HSTSMaxAge:         parseInt(k.String("HTTP_HSTS_MAX_AGE"), 31536000),
		ShutdownTimeout:    parseDuration(k.String("HTTP_SHUTDOWN_TIMEOUT"), "15s"),
		CartCacheTTL:       parseDuration(k.String("CART_CACHE_TTL"), "15m"),
		CartLockTTL:        parseDuration(k.String("CART_LOCK_TTL"), "10s"),
		WalletMinTopUp:     minTopUp,
		WalletPendingTTL:   parseDuration(k.String("WALLET_PENDING_TTL"), "24h"),
		WalletExpiryBatch:  parseInt(k.String("WALLET_EXPIRY_BATCH"), 100),
		DefaultGateway:     strings.ToLower(valueOrDefault(k.String("PAYMENT_GATEWAY_DEFAULT"), "vnpay")),
		BreakerMaxFailures: uint32(parseInt(k.String("GATEWAY_BREAKER_MAX_FAILURES"), 5)),
		BreakerOpenFor:     parseDuration(k.String("GATEWAY_BREAKER_OPEN_FOR"), "30s"),
		WebhookReplayTTL:   parseDuration(k.String("WEBHOOK_REPLAY_TTL"), "24h"),
		VNPay: VNPayConfig{
			TmnCode:    k.String("VNPAY_TMN_CODE"),
			HashSecret: k.String("VNPAY_HASH_SECRET"),
			BaseURL:    valueOrDefault(k.String("VNPAY_BASE_URL"), "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			ReturnURL:  k.String("VNPAY_RETURN_URL"),
		},
		MoMo: MoMoConfig{
			PartnerCode: k.String("MOMO_PARTNER_CODE"),
			AccessKey:   k.String("MOMO_ACCESS_KEY"),
			SecretKey:   k.String("MOMO_SECRET_KEY"),
			BaseURL:     valueOrDefault(k.String("MOMO_BASE_URL"), "https://test-payment.momo.vn/v2/gateway/pay"),
			IPNURL:      k.String("MOMO_IPN_URL"),
			RedirectURL: k.String("MOMO_REDIRECT_URL"),
		},
		KafkaBrokers: splitAndTrim(k.String("KAFKA_BROKERS")),
		KafkaTopic:   valueOrDefault(k.String("KAFKA_TOPIC"), "toko.events"),
		Obs: ObsConfig{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			EnableTracing:    parseBool(k.String("OBS_ENABLE_TRACING")),
			OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			SamplingRatio:    parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "toko"),
			LatencyBuckets:   k.String("OBS_LATENCY_BUCKETS_MS"),
		},
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	switch cfg.DefaultGateway {
	case "vnpay", "momo":
	default:
		return nil, fmt.Errorf("PAYMENT_GATEWAY_DEFAULT %q is not supported", cfg.DefaultGateway)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
