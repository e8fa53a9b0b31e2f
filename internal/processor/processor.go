package processor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relaybot/sheetmail/internal/mailer"
	"github.com/relaybot/sheetmail/internal/sheetqueue"
	"github.com/relaybot/sheetmail/internal/telegram"
)

// MetricHooks carries the optional metric callbacks injected by main so
// the processor stays metrics-agnostic. Nil fields become no-ops.
type MetricHooks struct {
	OnSent   func()
	OnFailed func()
	OnEmpty  func()
}

// SleepFunc is the cancellable delay primitive used between read and send.
// It is bound to one processing invocation: concurrent triggers (should a
// future design allow them) would each own their wait.
type SleepFunc func(ctx context.Context, d time.Duration)

// Processor runs the per-trigger state machine: read the head row, check
// emptiness, apply the delay, attempt the send, always pop the row, report.
type Processor struct {
	queues   sheetqueue.Factory
	sender   mailer.Sender
	notifier telegram.Notifier
	from     string
	sleep    SleepFunc
	logger   *zap.Logger
	hooks    MetricHooks
}

// New builds a Processor. sleep may be nil, in which case a timer-based
// context-aware wait is used; tests inject an instant one.
func New(
	queues sheetqueue.Factory,
	sender mailer.Sender,
	notifier telegram.Notifier,
	from string,
	sleep SleepFunc,
	logger *zap.Logger,
	hooks MetricHooks,
) *Processor {
	if sleep == nil {
		sleep = sleepContext
	}
	if hooks.OnSent == nil {
		hooks.OnSent = func() {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func() {}
	}
	if hooks.OnEmpty == nil {
		hooks.OnEmpty = func() {}
	}
	return &Processor{
		queues:   queues,
		sender:   sender,
		notifier: notifier,
		from:     from,
		sleep:    sleep,
		logger:   logger,
		hooks:    hooks,
	}
}

// Process consumes exactly one queue item on behalf of chatID. The returned
// error is always a queue failure (opening the handle, reading the head row,
// or popping it); mail failures are reported in-band and never surface here.
func (p *Processor) Process(ctx context.Context, chatID int64) error {
	log := p.logger.With(zap.Int64("chat_id", chatID))

	// A fresh handle per invocation: credential or connectivity problems
	// surface on the trigger that hits them.
	q, err := p.queues(ctx)
	if err != nil {
		return fmt.Errorf("open queue: %w", err)
	}

	row, err := q.ReadFirstRow(ctx)
	if err != nil {
		return fmt.Errorf("read head row: %w", err)
	}

	if row.IsEmpty() {
		log.Info("queue is empty")
		p.hooks.OnEmpty()
		p.notifier.Notify(ctx, chatID, emptyQueueText)
		// Pop anyway: a stray blank row must not wedge the queue.
		if err := q.DeleteFirstRow(ctx); err != nil {
			return fmt.Errorf("pop blank row: %w", err)
		}
		return nil
	}

	delay := row.DelaySeconds()
	if delay > 0 {
		log.Info("delaying before send", zap.Int("delay_seconds", delay))
		p.sleep(ctx, time.Duration(delay)*time.Second)
	}

	result := p.sender.Send(ctx, row.Recipient, row.Subject, row.Body)

	// The pop happens before the report and regardless of the send
	// outcome: a failed send must never block the queue.
	if err := q.DeleteFirstRow(ctx); err != nil {
		return fmt.Errorf("pop consumed row: %w", err)
	}

	if result.Success {
		log.Info("queue item dispatched", zap.String("to", row.Recipient))
		p.hooks.OnSent()
	} else {
		log.Warn("queue item failed to send",
			zap.String("to", row.Recipient),
			zap.String("detail", result.ErrorDetail))
		p.hooks.OnFailed()
	}

	p.notifier.Notify(ctx, chatID, report(p.from, row.Recipient, delay, result))
	return nil
}

// sleepContext waits for d or until ctx is cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
