package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/user-manager/internal/core/domain"
	"github.com/custodia-labs/user-manager/internal/core/ports/driven"
)

// Ensure MockEventNotifier implements EventNotifier
var _ driven.EventNotifier = (*MockEventNotifier)(nil)

// MockEventNotifier records every event it is asked to deliver.
// Setting Err makes delivery fail after recording.
type MockEventNotifier struct {
	mu     sync.Mutex
	events []domain.UserEvent
	Err    error
}

// NewMockEventNotifier creates a new MockEventNotifier
func NewMockEventNotifier() *MockEventNotifier {
	return &MockEventNotifier{}
}

func (m *MockEventNotifier) Notify(ctx context.Context, event domain.UserEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.Err
}

// Events returns a copy of the recorded events
func (m *MockEventNotifier) Events() []domain.UserEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.UserEvent, len(m.events))
	copy(out, m.events)
	return out
}
