package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-ledger/internal/common"
	"github.com/noah-isme/toko-ledger/internal/obs"
)

// Confirmer applies a verified callback. It reports false when no transaction matches.
type Confirmer interface {
	ConfirmCallback(ctx context.Context, res CallbackResult) (bool, error)
}

// Webhook receives provider callbacks, verifies them and hands them to the ledger.
type Webhook struct {
	Client    *Client
	Confirmer Confirmer
	Replay    redis.Cmdable
	ReplayTTL time.Duration
	Logger    zerolog.Logger
}

// Handle serves GET and POST /webhooks/payment/{gateway}.
func (h Webhook) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Client == nil || h.Confirmer == nil {
		common.JSONError(w, http.StatusInternalServerError, "PAYMENT_NOT_CONFIGURED", "webhook unavailable", nil)
		return
	}
	name, err := ParseName(chi.URLParam(r, "gateway"))
	if err != nil {
		common.JSONError(w, http.StatusNotFound, "PROVIDER_NOT_SUPPORTED", "unknown provider", nil)
		return
	}
	provider, ok := h.Client.Provider(name)
	if !ok {
		common.JSONError(w, http.StatusNotFound, "PROVIDER_NOT_SUPPORTED", "unknown provider", nil)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "unable to read payload", nil)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	ctx := r.Context()
	logger := h.Logger.With().Str("gateway", string(name)).Logger()
	res := provider.VerifyCallback(r, body)
	if !res.Valid {
		logger.Warn().AnErr("reason", res.Err).Msg("gateway_callback_rejected")
		obs.ObserveGatewayCallback(string(name), "invalid")
		provider.Acknowledge(w, AckInvalid)
		return
	}
	logger = logger.With().Str("gateway_tx_id", res.TransactionID).Str("status", string(res.Status)).Logger()

	replayKey := ""
	if h.Replay != nil && h.ReplayTTL > 0 {
		replayKey = fmt.Sprintf("wh:%s:%s", name, common.Sha256Hex(r.URL.RawQuery+"\n"+string(body)))
		fresh, err := h.Replay.SetNX(ctx, replayKey, "1", h.ReplayTTL).Result()
		if err != nil {
			logger.Error().Err(err).Msg("gateway_callback_replay_store_failed")
			obs.ObserveGatewayCallback(string(name), "error")
			provider.Acknowledge(w, AckError)
			return
		}
		if !fresh {
			logger.Warn().Msg("gateway_callback_duplicate")
			obs.ObserveGatewayCallback(string(name), "replay")
			provider.Acknowledge(w, AckOK)
			return
		}
	}

	if res.Status == StatusPending {
		obs.ObserveGatewayCallback(string(name), "pending")
		provider.Acknowledge(w, AckOK)
		return
	}

	found, err := h.Confirmer.ConfirmCallback(ctx, res)
	if err != nil {
		if replayKey != "" {
			_ = h.Replay.Del(context.WithoutCancel(ctx), replayKey).Err()
		}
		logger.Error().Err(err).Msg("gateway_callback_failed")
		obs.ObserveGatewayCallback(string(name), "error")
		provider.Acknowledge(w, AckError)
		return
	}
	if !found {
		logger.Warn().Msg("gateway_callback_unmatched")
		obs.ObserveGatewayCallback(string(name), "not_found")
		provider.Acknowledge(w, AckNotFound)
		return
	}
	obs.ObserveGatewayCallback(string(name), "ok")
	provider.Acknowledge(w, AckOK)
}
