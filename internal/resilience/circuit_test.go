package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-ledger/internal/resilience"
)

var errDownstream = errors.New("downstream failed")

func TestBreakerTransitions(t *testing.T) {
	breaker := resilience.NewBreaker(resilience.Settings{Target: "transitions", MaxFailures: 2, OpenFor: 50 * time.Millisecond})
	ctx := context.Background()
	fail := func(context.Context) error { return errDownstream }
	ok := func(context.Context) error { return nil }

	require.ErrorIs(t, breaker.Execute(ctx, fail), errDownstream)
	require.ErrorIs(t, breaker.Execute(ctx, fail), errDownstream)
	require.Equal(t, resilience.Open, breaker.State())

	require.ErrorIs(t, breaker.Execute(ctx, ok), resilience.ErrOpenCircuit, "breaker should reject while open")

	time.Sleep(60 * time.Millisecond)
	require.Equal(t, resilience.HalfOpen, breaker.State())
	require.NoError(t, breaker.Execute(ctx, ok), "half-open trial request should pass")
	require.Equal(t, resilience.Closed, breaker.State())
}

func TestBreakerIgnoresNonFailures(t *testing.T) {
	breaker := resilience.NewBreaker(resilience.Settings{
		Target:      "ignore",
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return !errors.Is(err, context.Canceled) },
	})
	err := breaker.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, resilience.Closed, breaker.State())
}

func TestCallReturnsValue(t *testing.T) {
	breaker := resilience.NewBreaker(resilience.Settings{Target: "call"})
	v, err := resilience.Call(context.Background(), breaker, func(context.Context) (string, error) { return "ok", nil })
	require.NoError(t, err)
	require.Equal(t, "ok", v)

	var nilBreaker *resilience.Breaker
	v, err = resilience.Call(context.Background(), nilBreaker, func(context.Context) (string, error) { return "direct", nil })
	require.NoError(t, err)
	require.Equal(t, "direct", v)
}

func TestBackoffWithJitter(t *testing.T) {
	base := 100 * time.Millisecond
	d1 := resilience.Backoff(base, 1, 0)
	require.Equal(t, base, d1)

	d2 := resilience.Backoff(base, 3, 0)
	require.Equal(t, base*4, d2)

	// With jitter the delay should stay within expected range.
	d3 := resilience.Backoff(base, 2, 0.2)
	min := base*2 - (base * 2 / 5)
	max := base*2 + (base * 2 / 5)
	require.GreaterOrEqual(t, d3, min)
	require.LessOrEqual(t, d3, max)
}
