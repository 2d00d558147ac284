package resilience

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/trace"
)

// ErrOpenCircuit is returned when the circuit breaker refuses a request.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State represents the current breaker state.
type State int

const (
	// Closed accepts all requests and tracks failures.
	Closed State = iota
	// Open rejects requests until the cool-off period expires.
	Open
	// HalfOpen allows a limited number of trial requests to determine recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Settings configures a Breaker.
type Settings struct {
	Target string
	// MaxFailures consecutive failures trip the breaker.
	MaxFailures uint32
	// OpenFor is the cool-off before a half-open trial request is allowed.
	OpenFor time.Duration
	// IsFailure decides which errors count against the breaker. Defaults to any non-nil error.
	IsFailure func(error) bool
	Logger    zerolog.Logger
}

// Breaker guards a downstream dependency with a consecutive-failure circuit breaker.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker[any]
	target string
	logger zerolog.Logger
}

// NewBreaker builds a breaker backed by sony/gobreaker.
func NewBreaker(st Settings) *Breaker {
	if st.MaxFailures == 0 {
		st.MaxFailures = 5
	}
	if st.OpenFor <= 0 {
		st.OpenFor = 30 * time.Second
	}
	b := &Breaker{target: targetLabel(st.Target), logger: st.Logger}
	isFailure := st.IsFailure
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        b.target,
		MaxRequests: 1,
		Timeout:     st.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= st.MaxFailures
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			b.recordTransition(fromGobreaker(from), fromGobreaker(to))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			if isFailure != nil {
				return !isFailure(err)
			}
			return false
		},
	})
	b.recordState(Closed)
	return b
}

// Execute runs fn through the breaker. Open or saturated half-open states return ErrOpenCircuit.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if b == nil || b.cb == nil {
		return fn(ctx)
	}
	_, err := b.cb.Execute(func() (any, error) {
		return nil, fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.Warn().Str("target", b.target).Str("trace_id", traceIDFromContext(ctx)).Msg("breaker_rejected")
		return ErrOpenCircuit
	}
	return err
}

// Call runs fn through b and returns its value.
func Call[T any](ctx context.Context, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := b.Execute(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err == nil {
			out = v
		}
		return err
	})
	return out, err
}

// State reports the current breaker state.
func (b *Breaker) State() State {
	if b == nil || b.cb == nil {
		return Closed
	}
	return fromGobreaker(b.cb.State())
}

// Target returns the label used in metrics and logs.
func (b *Breaker) Target() string {
	if b == nil {
		return "default"
	}
	return b.target
}

// Backoff returns an exponential backoff duration for the provided attempt.
// Jitter is expressed as a fraction (e.g. 0.2 == 20%).
func Backoff(base time.Duration, attempt int, jitterPct float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base * time.Duration(1<<uint(attempt-1))
	if jitterPct <= 0 {
		return d
	}
	jitter := float64(d) * jitterPct
	delta := (rand.Float64()*2 - 1) * jitter
	return d + time.Duration(delta)
}

func (b *Breaker) recordState(state State) {
	BreakerState.WithLabelValues(b.target).Set(stateGaugeValue(state))
}

func (b *Breaker) recordTransition(from, to State) {
	b.recordState(to)
	BreakerTransitions.WithLabelValues(b.target, from.String(), to.String()).Inc()
	if to == Open {
		BreakerOpenedTotal.WithLabelValues(b.target).Inc()
	}
	b.logger.Info().Str("target", b.target).Str("from_state", from.String()).Str("to_state", to.String()).Msg("breaker_transition")
}

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return Open
	case gobreaker.StateHalfOpen:
		return HalfOpen
	default:
		return Closed
	}
}

func targetLabel(target string) string {
	trimmed := strings.TrimSpace(target)
	if trimmed == "" {
		return "default"
	}
	return trimmed
}

func stateGaugeValue(state State) float64 {
	switch state {
	case Closed:
		return 0
	case Open:
		return 1
	case HalfOpen:
		return 2
	default:
		return -1
	}
}

func traceIDFromContext(ctx context.Context) string {
	span := trace.SpanContextFromContext(ctx)
	if span.IsValid() {
		return span.TraceID().String()
	}
	return ""
}
