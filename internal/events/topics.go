package events

// Topic constants for domain events emitted by the cart and wallet.
const (
	TopicTopUpSucceeded  = "wallet.topup.succeeded"
	TopicTopUpFailed     = "wallet.topup.failed"
	TopicHoldConfirmed   = "wallet.hold.confirmed"
	TopicHoldFailed      = "wallet.hold.failed"
	TopicRefundSucceeded = "wallet.refund.succeeded"
	TopicCouponApplied   = "cart.coupon.applied"
	TopicCartCleared     = "cart.cleared"
)

// DefaultTopics returns the canonical list of topics.
func DefaultTopics() []string {
	return []string{
		TopicTopUpSucceeded,
		TopicTopUpFailed,
		TopicHoldConfirmed,
		TopicHoldFailed,
		TopicRefundSucceeded,
		TopicCouponApplied,
		TopicCartCleared,
	}
}
