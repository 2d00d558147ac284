package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TypeExpirePending is the asynq task type for the pending top-up sweep.
const TypeExpirePending = "wallet:expire_pending"

// ExpirePayload configures one sweep.
type ExpirePayload struct {
	OlderThanSeconds int64 `json:"older_than_seconds"`
	Limit            int   `json:"limit"`
}

// NewExpireTask builds the sweep task. Unique keeps overlapping schedules from stacking up.
func NewExpireTask(olderThan time.Duration, limit int) (*asynq.Task, error) {
	payload, err := json.Marshal(ExpirePayload{OlderThanSeconds: int64(olderThan / time.Second), Limit: limit})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeExpirePending, payload,
		asynq.MaxRetry(1),
		asynq.Timeout(time.Minute),
		asynq.Unique(55*time.Second),
	), nil
}

// Expirer is the part of the ledger the sweep needs.
type Expirer interface {
	ExpirePending(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// ExpiryHandler processes TypeExpirePending tasks.
type ExpiryHandler struct {
	Ledger Expirer
	Logger zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h ExpiryHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if h.Ledger == nil {
		return fmt.Errorf("wallet expiry not configured: %w", asynq.SkipRetry)
	}
	var p ExpirePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("decode %s payload: %v: %w", TypeExpirePending, err, asynq.SkipRetry)
	}
	n, err := h.Ledger.ExpirePending(ctx, time.Duration(p.OlderThanSeconds)*time.Second, p.Limit)
	if err != nil {
		h.Logger.Error().Err(err).Int("expired", n).Msg("wallet_expiry_task_failed")
		return err
	}
	h.Logger.Debug().Int("expired", n).Msg("wallet_expiry_task_done")
	return nil
}
