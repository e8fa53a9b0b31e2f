package processor_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/relaybot/sheetmail/internal/domain"
	"github.com/relaybot/sheetmail/internal/mailer"
	"github.com/relaybot/sheetmail/internal/processor"
	"github.com/relaybot/sheetmail/internal/sheetqueue"
	"github.com/relaybot/sheetmail/internal/telegram"
)

type fixture struct {
	queue    *sheetqueue.MockClient
	sender   *mailer.MockSender
	notifier *telegram.MockNotifier
	slept    []time.Duration
	proc     *processor.Processor
}

func newFixture(row domain.QueueRow) *fixture {
	f := &fixture{
		queue:    &sheetqueue.MockClient{Row: row},
		sender:   &mailer.MockSender{Result: domain.SendResult{Success: true}},
		notifier: &telegram.MockNotifier{},
	}
	sleep := func(_ context.Context, d time.Duration) { f.slept = append(f.slept, d) }
	f.proc = processor.New(
		sheetqueue.StaticFactory(f.queue),
		f.sender,
		f.notifier,
		"relay@example.com",
		sleep,
		zap.NewNop(),
		processor.MetricHooks{},
	)
	return f
}

func TestProcess_SuccessfulSend(t *testing.T) {
	f := newFixture(domain.QueueRow{Recipient: "a@x.com", Subject: "Hi", Body: "<p>hi</p>", Delay: "0"})

	if err := f.proc.Process(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.sender.Calls) != 1 {
		t.Fatalf("expected 1 send, got %d", len(f.sender.Calls))
	}
	if f.sender.Calls[0].To != "a@x.com" || f.sender.Calls[0].Subject != "Hi" {
		t.Fatalf("unexpected send call %+v", f.sender.Calls[0])
	}
	if f.queue.DeleteCalls != 1 {
		t.Fatalf("expected exactly 1 delete, got %d", f.queue.DeleteCalls)
	}

	sent := f.notifier.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 report, got %d", len(sent))
	}
	if sent[0].ChatID != 42 {
		t.Fatalf("report went to chat %d, want 42", sent[0].ChatID)
	}
	if !strings.Contains(sent[0].Text, "✅") {
		t.Fatalf("expected success marker in report, got %q", sent[0].Text)
	}
	if !strings.Contains(sent[0].Text, "relay@example.com") || !strings.Contains(sent[0].Text, "a@x.com") {
		t.Fatalf("report missing account or recipient: %q", sent[0].Text)
	}
}

func TestProcess_FailedSendStillPopsRow(t *testing.T) {
	f := newFixture(domain.QueueRow{Recipient: "bad", Subject: "Hi", Body: "b", Delay: "0"})
	f.sender.Result = domain.SendResult{ErrorDetail: "malformed address"}

	if err := f.proc.Process(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.queue.DeleteCalls != 1 {
		t.Fatalf("expected exactly 1 delete despite send failure, got %d", f.queue.DeleteCalls)
	}
	sent := f.notifier.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 report, got %d", len(sent))
	}
	if !strings.Contains(sent[0].Text, "❌") || !strings.Contains(sent[0].Text, "malformed address") {
		t.Fatalf("expected failure detail in report, got %q", sent[0].Text)
	}
}

func TestProcess_EmptyQueue(t *testing.T) {
	tests := []struct {
		name string
		row  domain.QueueRow
	}{
		{"absent range", domain.QueueRow{}},
		{"all cells blank", domain.RowFromCells([]any{"", "", "", ""})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.row)

			if err := f.proc.Process(context.Background(), 42); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(f.sender.Calls) != 0 {
				t.Fatalf("sender must not be invoked on an empty queue, got %d calls", len(f.sender.Calls))
			}
			if f.queue.DeleteCalls != 1 {
				t.Fatalf("expected exactly 1 cleanup delete, got %d", f.queue.DeleteCalls)
			}
			sent := f.notifier.Sent()
			if len(sent) != 1 || !strings.Contains(sent[0].Text, "Queue is empty") {
				t.Fatalf("expected a queue-empty notification, got %+v", sent)
			}
		})
	}
}

func TestProcess_DelayHandling(t *testing.T) {
	t.Run("numeric delay waits before send", func(t *testing.T) {
		f := newFixture(domain.QueueRow{Recipient: "a@x.com", Subject: "s", Body: "b", Delay: "5"})

		if err := f.proc.Process(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.slept) != 1 || f.slept[0] != 5*time.Second {
			t.Fatalf("expected one 5s wait, got %v", f.slept)
		}
		if !strings.Contains(f.notifier.Sent()[0].Text, "5 seconds") {
			t.Fatalf("report should state the applied delay: %q", f.notifier.Sent()[0].Text)
		}
	})

	t.Run("malformed delay means no wait and no error", func(t *testing.T) {
		f := newFixture(domain.QueueRow{Recipient: "a@x.com", Subject: "s", Body: "b", Delay: "abc"})

		if err := f.proc.Process(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.slept) != 0 {
			t.Fatalf("expected no wait, got %v", f.slept)
		}
		if len(f.sender.Calls) != 1 {
			t.Fatalf("send must still happen, got %d calls", len(f.sender.Calls))
		}
	})
}

func TestProcess_ReadFailurePropagates(t *testing.T) {
	f := newFixture(domain.QueueRow{})
	f.queue.ReadErr = domain.ErrQueueUnavailable

	err := f.proc.Process(context.Background(), 42)
	if !errors.Is(err, domain.ErrQueueUnavailable) {
		t.Fatalf("expected ErrQueueUnavailable, got %v", err)
	}
	if f.queue.DeleteCalls != 0 {
		t.Fatalf("no delete may happen after a failed read, got %d", f.queue.DeleteCalls)
	}
	if len(f.notifier.Sent()) != 0 {
		t.Fatalf("the boundary, not the processor, reports read failures")
	}
}

func TestProcess_DeleteFailurePropagates(t *testing.T) {
	f := newFixture(domain.QueueRow{Recipient: "a@x.com", Subject: "s", Body: "b", Delay: "0"})
	f.queue.DeleteErr = domain.ErrQueueUnavailable

	err := f.proc.Process(context.Background(), 42)
	if !errors.Is(err, domain.ErrQueueUnavailable) {
		t.Fatalf("expected ErrQueueUnavailable, got %v", err)
	}
	// The send already happened; only the per-row report is suppressed.
	if len(f.sender.Calls) != 1 {
		t.Fatalf("expected 1 send, got %d", len(f.sender.Calls))
	}
	if len(f.notifier.Sent()) != 0 {
		t.Fatalf("expected no per-row report after a failed pop, got %+v", f.notifier.Sent())
	}
}

func TestProcess_FactoryFailurePropagates(t *testing.T) {
	f := newFixture(domain.QueueRow{})
	proc := processor.New(
		func(context.Context) (sheetqueue.Client, error) {
			return nil, domain.ErrQueueUnavailable
		},
		f.sender, f.notifier, "relay@example.com", nil, zap.NewNop(), processor.MetricHooks{},
	)

	if err := proc.Process(context.Background(), 1); !errors.Is(err, domain.ErrQueueUnavailable) {
		t.Fatalf("expected ErrQueueUnavailable, got %v", err)
	}
}

func TestProcess_MetricHooks(t *testing.T) {
	var sent, failed, empty int
	hooks := processor.MetricHooks{
		OnSent:   func() { sent++ },
		OnFailed: func() { failed++ },
		OnEmpty:  func() { empty++ },
	}

	t.Run("sent", func(t *testing.T) {
		f := newFixture(domain.QueueRow{Recipient: "a@x.com", Subject: "s", Body: "b"})
		proc := processor.New(sheetqueue.StaticFactory(f.queue), f.sender, f.notifier,
			"relay@example.com", nil, zap.NewNop(), hooks)
		if err := proc.Process(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sent != 1 || failed != 0 || empty != 0 {
			t.Fatalf("hooks = sent:%d failed:%d empty:%d", sent, failed, empty)
		}
	})

	t.Run("empty", func(t *testing.T) {
		f := newFixture(domain.QueueRow{})
		proc := processor.New(sheetqueue.StaticFactory(f.queue), f.sender, f.notifier,
			"relay@example.com", nil, zap.NewNop(), hooks)
		if err := proc.Process(context.Background(), 1); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if empty != 1 {
			t.Fatalf("expected empty hook once, got %d", empty)
		}
	})
}
