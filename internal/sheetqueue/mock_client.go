package sheetqueue

import (
	"context"
	"sync"

	"github.com/relaybot/sheetmail/internal/domain"
)

// MockClient is a hand-written, in-memory implementation of Client used in
// unit tests. No mock-generation library needed.
type MockClient struct {
	mu sync.Mutex

	// Row is returned by every ReadFirstRow call.
	Row domain.QueueRow

	// Optional error overrides — set in tests to simulate failure paths.
	ReadErr   error
	DeleteErr error

	ReadCalls   int
	DeleteCalls int
}

func (m *MockClient) ReadFirstRow(context.Context) (domain.QueueRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadCalls++
	if m.ReadErr != nil {
		return domain.QueueRow{}, m.ReadErr
	}
	return m.Row, nil
}

func (m *MockClient) DeleteFirstRow(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	return m.DeleteErr
}

// StaticFactory returns a Factory that always hands back the same client.
func StaticFactory(c Client) Factory {
	return func(context.Context) (Client, error) { return c, nil }
}

var _ Client = (*MockClient)(nil)
