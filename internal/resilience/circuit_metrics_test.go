package resilience_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-ledger/internal/resilience"
)

func TestBreakerMetricsTransitions(t *testing.T) {
	resilience.BreakerState.Reset()
	resilience.BreakerTransitions.Reset()
	resilience.BreakerOpenedTotal.Reset()

	breaker := resilience.NewBreaker(resilience.Settings{Target: "vnpay", MaxFailures: 1, OpenFor: 20 * time.Millisecond})
	ctx := context.Background()

	_ = breaker.Execute(ctx, func(context.Context) error { return errDownstream })
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("vnpay")))

	require.Eventually(t, func() bool {
		return breaker.State() == resilience.HalfOpen
	}, 200*time.Millisecond, 5*time.Millisecond)
	require.Equal(t, 2.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("vnpay")))

	require.NoError(t, breaker.Execute(ctx, func(context.Context) error { return nil }))
	require.Equal(t, 0.0, testutil.ToFloat64(resilience.BreakerState.WithLabelValues("vnpay")))

	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerOpenedTotal.WithLabelValues("vnpay")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("vnpay", "closed", "open")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("vnpay", "open", "half_open")))
	require.Equal(t, 1.0, testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("vnpay", "half_open", "closed")))
}
