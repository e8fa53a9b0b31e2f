package telegram

import (
	"context"
	"sync"
)

// SentMessage records one MockNotifier.Notify invocation.
type SentMessage struct {
	ChatID int64
	Text   string
}

// MockNotifier is a hand-written Notifier used in unit tests.
type MockNotifier struct {
	mu       sync.Mutex
	Messages []SentMessage
}

func (m *MockNotifier) Notify(_ context.Context, chatID int64, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, SentMessage{ChatID: chatID, Text: text})
}

// Sent returns a copy of everything notified so far.
func (m *MockNotifier) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.Messages))
	copy(out, m.Messages)
	return out
}

var _ Notifier = (*MockNotifier)(nil)
