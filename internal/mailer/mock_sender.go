package mailer

import (
	"context"
	"sync"

	"github.com/relaybot/sheetmail/internal/domain"
)

// SendCall records the arguments of one MockSender.Send invocation.
type SendCall struct {
	To      string
	Subject string
	Body    string
}

// MockSender is a hand-written Sender used in unit tests: it records every
// call and returns a scripted result.
type MockSender struct {
	mu     sync.Mutex
	Result domain.SendResult
	Calls  []SendCall
}

func (m *MockSender) Send(_ context.Context, to, subject, body string) domain.SendResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, SendCall{To: to, Subject: subject, Body: body})
	return m.Result
}

var _ Sender = (*MockSender)(nil)
