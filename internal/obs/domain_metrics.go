package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartMutationsTotal counts cart operations by outcome.
	CartMutationsTotal *prometheus.CounterVec
	// CartConflictsTotal counts optimistic version conflicts on cart totals.
	CartConflictsTotal prometheus.Counter
	// WalletConfirmationsTotal counts ledger transitions by type and outcome (applied|duplicate|not_found|failed).
	WalletConfirmationsTotal *prometheus.CounterVec
	// GatewayRequestsTotal counts payment creation calls per gateway.
	GatewayRequestsTotal *prometheus.CounterVec
	// GatewayCallbacksTotal counts inbound gateway callbacks per outcome.
	GatewayCallbacksTotal *prometheus.CounterVec
	// WalletExpiredTotal counts pending top-ups failed by the expiry sweep.
	WalletExpiredTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartMutationsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart mutations by operation and result.",
		}, []string{"op", "result"}))
		CartConflictsTotal = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_version_conflicts_total",
			Help:      "Count of optimistic version conflicts while recomputing cart totals.",
		}))
		WalletConfirmationsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_confirmations_total",
			Help:      "Count of wallet transaction confirmations by type and outcome.",
		}, []string{"type", "outcome"}))
		GatewayRequestsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Count of payment gateway create-payment calls by result.",
		}, []string{"gateway", "result"}))
		GatewayCallbacksTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_callbacks_total",
			Help:      "Count of processed payment gateway callbacks by result.",
		}, []string{"gateway", "result"}))
		WalletExpiredTotal = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "wallet_expired_topups_total",
			Help:      "Number of pending top-ups failed by the expiry sweep.",
		}))
	})
}

// ObserveCartMutation increments the cart mutation counter when registered.
func ObserveCartMutation(op, result string) {
	if CartMutationsTotal != nil {
		CartMutationsTotal.WithLabelValues(op, result).Inc()
	}
}

// ObserveCartConflict increments the cart conflict counter when registered.
func ObserveCartConflict() {
	if CartConflictsTotal != nil {
		CartConflictsTotal.Inc()
	}
}

// ObserveWalletConfirmation increments the wallet confirmation counter when registered.
func ObserveWalletConfirmation(txType, outcome string) {
	if WalletConfirmationsTotal != nil {
		WalletConfirmationsTotal.WithLabelValues(txType, outcome).Inc()
	}
}

// ObserveGatewayRequest increments the gateway request counter when registered.
func ObserveGatewayRequest(gateway, result string) {
	if GatewayRequestsTotal != nil {
		GatewayRequestsTotal.WithLabelValues(gateway, result).Inc()
	}
}

// ObserveGatewayCallback increments the gateway callback counter when registered.
func ObserveGatewayCallback(gateway, result string) {
	if GatewayCallbacksTotal != nil {
		GatewayCallbacksTotal.WithLabelValues(gateway, result).Inc()
	}
}

// ObserveWalletExpired adds n to the expiry counter when registered.
func ObserveWalletExpired(n int) {
	if WalletExpiredTotal != nil && n > 0 {
		WalletExpiredTotal.Add(float64(n))
	}
}
