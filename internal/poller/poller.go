package poller

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/relaybot/sheetmail/internal/processor"
	"github.com/relaybot/sheetmail/internal/telegram"
)

// drainBatchSize bounds a single getUpdates page while flushing the
// backlog at startup.
const drainBatchSize = 100

// fetchErrorPause is how long the loop sleeps after a failed fetch before
// retrying, so a dead network does not turn the loop into a busy spin.
const fetchErrorPause = time.Second

// UpdateSource is the slice of the Telegram bot API the poller needs.
// Satisfied by *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// TriggerProcessor consumes one queue item on behalf of a chat.
// Satisfied by *processor.Processor; mocked in tests.
type TriggerProcessor interface {
	Process(ctx context.Context, chatID int64) error
}

// Poller pulls updates from Telegram with long polling and feeds each
// trigger into the processor, one at a time, in arrival order.
type Poller struct {
	src         UpdateSource
	proc        TriggerProcessor
	notifier    telegram.Notifier
	waitSeconds int
	logger      *zap.Logger
	onPollError func()
	onTrigger   func()
}

// New builds a Poller. waitSeconds is the long-poll hold time passed to
// getUpdates. onPollError and onTrigger are optional metrics hooks
// (nil = no-op).
func New(src UpdateSource, proc TriggerProcessor, notifier telegram.Notifier, waitSeconds int, logger *zap.Logger, onPollError, onTrigger func()) *Poller {
	if onPollError == nil {
		onPollError = func() {}
	}
	if onTrigger == nil {
		onTrigger = func() {}
	}
	return &Poller{
		src:         src,
		proc:        proc,
		notifier:    notifier,
		waitSeconds: waitSeconds,
		logger:      logger,
		onPollError: onPollError,
		onTrigger:   onTrigger,
	}
}

// Run drives the polling loop until ctx is cancelled. It first detaches
// any registered webhook (polling and webhooks are mutually exclusive on
// the Telegram side), then discards the accumulated backlog so that stale
// button presses from the downtime window do not fire a burst of sends,
// and finally settles into the long-poll loop.
func (p *Poller) Run(ctx context.Context) {
	p.removeWebhook()
	offset := p.drain(ctx)

	p.logger.Info("poller started", zap.Int("wait_seconds", p.waitSeconds), zap.Int("offset", offset))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		default:
		}
		offset = p.pollOnce(ctx, offset)
	}
}

// removeWebhook deregisters any webhook bound to the bot token. Failure is
// survivable: getUpdates will report a conflict error on every call and
// the loop keeps retrying, so we log and move on.
func (p *Poller) removeWebhook() {
	if _, err := p.src.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: false}); err != nil {
		p.logger.Warn("webhook removal failed, polling may conflict", zap.Error(err))
	}
}

// drain pages through the pending backlog with zero-wait fetches,
// acknowledging every update without processing it. Returns the offset to
// resume live polling from. A fetch error ends the drain; whatever was
// not yet acknowledged will surface again in the live loop.
func (p *Poller) drain(ctx context.Context) int {
	offset := 0
	discarded := 0
	for ctx.Err() == nil {
		updates, err := p.src.GetUpdates(tgbotapi.UpdateConfig{
			Offset:  offset,
			Limit:   drainBatchSize,
			Timeout: 0,
		})
		if err != nil {
			p.onPollError()
			p.logger.Warn("backlog drain fetch failed", zap.Error(err))
			break
		}
		if len(updates) == 0 {
			break
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
		}
		discarded += len(updates)
	}
	if discarded > 0 {
		p.logger.Info("discarded stale updates", zap.Int("count", discarded))
	}
	return offset
}

// pollOnce performs a single long-poll fetch and handles every update in
// the batch, returning the next offset. The offset is advanced past an
// update before it is handled, so a crash mid-batch skips rather than
// replays the update. Redelivery after a crash would re-send a mail whose
// queue row may already be gone.
func (p *Poller) pollOnce(ctx context.Context, offset int) int {
	updates, err := p.src.GetUpdates(tgbotapi.UpdateConfig{
		Offset:  offset,
		Limit:   drainBatchSize,
		Timeout: p.waitSeconds,
	})
	if err != nil {
		p.onPollError()
		p.logger.Warn("update fetch failed", zap.Error(err))
		p.pause(ctx, fetchErrorPause)
		return offset
	}

	for _, u := range updates {
		if u.UpdateID >= offset {
			offset = u.UpdateID + 1
		}
		trig, ok := telegram.TriggerFromUpdate(u)
		if !ok {
			continue
		}
		p.onTrigger()
		p.logger.Info("poll trigger",
			zap.Int64("chat_id", trig.ChatID),
			zap.Int("update_id", trig.UpdateID),
		)
		if err := p.proc.Process(ctx, trig.ChatID); err != nil {
			p.logger.Error("trigger processing failed",
				zap.Int64("chat_id", trig.ChatID), zap.Error(err))
			p.notifier.Notify(ctx, trig.ChatID, processor.GenericFailureText(err))
		}
	}
	return offset
}

func (p *Poller) pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
