package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Notifier delivers best-effort report messages to a chat. Failures are
// swallowed at this boundary: a lost report must never alter the processing
// pipeline's outcome.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string)
}

// messageSender is the slice of tgbotapi.BotAPI the notifier needs.
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// BotNotifier posts Markdown messages through the Bot API behind a token
// bucket. Telegram throttles senders at roughly 30 messages per second;
// burst == rate so no extra burst accumulates above the limit.
type BotNotifier struct {
	bot       messageSender
	limiter   *rate.Limiter
	timeout   time.Duration
	logger    *zap.Logger
	onFailure func()
}

// NewNotifier wraps bot. The HTTP round trip is bounded by the timeout set
// on the bot's HTTP client; the same timeout caps the wait for a rate
// token here. onFailure is an optional metrics hook (nil = no-op).
func NewNotifier(bot messageSender, ratePerSec int, timeout time.Duration, logger *zap.Logger, onFailure func()) *BotNotifier {
	if onFailure == nil {
		onFailure = func() {}
	}
	return &BotNotifier{
		bot:       bot,
		limiter:   rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		timeout:   timeout,
		logger:    logger,
		onFailure: onFailure,
	}
}

// Notify sends text to chatID with Markdown formatting. Any failure —
// network, timeout, platform rejection — is logged and counted, nothing
// more.
func (n *BotNotifier) Notify(ctx context.Context, chatID int64, text string) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.limiter.Wait(ctx); err != nil {
		n.logger.Warn("notification dropped waiting for rate token",
			zap.Int64("chat_id", chatID), zap.Error(err))
		n.onFailure()
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warn("failed to deliver chat notification",
			zap.Int64("chat_id", chatID), zap.Error(err))
		n.onFailure()
	}
}

var _ Notifier = (*BotNotifier)(nil)
