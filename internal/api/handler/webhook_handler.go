package handler

import (
	"context"
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	apimw "github.com/relaybot/sheetmail/internal/api/middleware"
	"github.com/relaybot/sheetmail/internal/processor"
	"github.com/relaybot/sheetmail/internal/telegram"
)

// TriggerProcessor consumes one queue item on behalf of a chat.
// Satisfied by *processor.Processor; mocked in tests.
type TriggerProcessor interface {
	Process(ctx context.Context, chatID int64) error
}

// WebhookHandler receives update envelopes pushed by the Telegram platform.
type WebhookHandler struct {
	secret    string
	proc      TriggerProcessor
	notifier  telegram.Notifier
	logger    *zap.Logger
	onTrigger func()
}

// NewWebhookHandler builds the handler. An empty secret disables the
// shared-secret check. onTrigger is an optional metrics hook (nil = no-op).
func NewWebhookHandler(secret string, proc TriggerProcessor, notifier telegram.Notifier, logger *zap.Logger, onTrigger func()) *WebhookHandler {
	if onTrigger == nil {
		onTrigger = func() {}
	}
	return &WebhookHandler{
		secret:    secret,
		proc:      proc,
		notifier:  notifier,
		logger:    logger,
		onTrigger: onTrigger,
	}
}

// Receive handles POST /webhook?token=<secret>.
//
// Every outcome except a secret mismatch answers 200: the platform
// re-delivers the update on non-2xx responses, and an internal processing
// failure must not cause a redelivery storm.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" && r.URL.Query().Get("token") != h.secret {
		respondError(w, http.StatusForbidden, "Forbidden")
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		// Fail closed: an envelope we cannot parse is not a trigger.
		h.logger.Warn("undecodable webhook payload", zap.Error(err))
		respondOK(w)
		return
	}

	trig, ok := telegram.TriggerFromUpdate(update)
	if !ok {
		respondOK(w)
		return
	}

	h.onTrigger()
	h.logger.Info("webhook trigger",
		zap.Int64("chat_id", trig.ChatID),
		zap.Int("update_id", trig.UpdateID),
		zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
	)

	if err := h.proc.Process(r.Context(), trig.ChatID); err != nil {
		h.logger.Error("trigger processing failed",
			zap.Int64("chat_id", trig.ChatID), zap.Error(err))
		h.notifier.Notify(r.Context(), trig.ChatID, processor.GenericFailureText(err))
	}

	respondOK(w)
}
