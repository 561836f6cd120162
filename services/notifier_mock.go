package services

import (
	"sync"

	"github.com/lokaclean/lokaclean-api/models"
)

// MockNotifier records notifications for test assertions.
type MockNotifier struct {
	mu         sync.Mutex
	received   []int64 // order numbers from OrderReceived
	dispatched []int64 // order numbers from CleanerDispatched
	err        error
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// SetAsMockForTesting sets this mock as the global notifier instance.
func (m *MockNotifier) SetAsMockForTesting() {
	SetNotifier(m)
}

func (m *MockNotifier) OrderReceived(order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.received = append(m.received, order.Number)
	return nil
}

func (m *MockNotifier) CleanerDispatched(order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.dispatched = append(m.dispatched, order.Number)
	return nil
}

// FailWith makes every notification return err.
func (m *MockNotifier) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// DispatchedCount returns how many CleanerDispatched cues fired.
func (m *MockNotifier) DispatchedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dispatched)
}

// ReceivedCount returns how many OrderReceived alerts fired.
func (m *MockNotifier) ReceivedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.received)
}
