package services

import (
	"fmt"
	"sync"

	"github.com/lokaclean/lokaclean-api/models"
)

// MockPaymentGateway is an in-memory PaymentGateway for testing.
type MockPaymentGateway struct {
	mu       sync.RWMutex
	statuses map[string]GatewayStatus // checkout ref -> status
	created  []string                 // refs in creation order
	failNext error
}

// NewMockPaymentGateway creates a new mock gateway.
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{statuses: make(map[string]GatewayStatus)}
}

// SetAsMockForTesting sets this mock as the global gateway instance.
func (m *MockPaymentGateway) SetAsMockForTesting() {
	SetPaymentGateway(m)
}

// CreateCheckoutToken records the ref and returns a fake widget token.
func (m *MockPaymentGateway) CreateCheckoutToken(order *models.Order, ref string) (*CheckoutIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return nil, err
	}
	m.statuses[ref] = GatewayPending
	m.created = append(m.created, ref)
	return &CheckoutIntent{
		Ref:         ref,
		Token:       "mock-token-" + ref,
		RedirectURL: fmt.Sprintf("https://app.sandbox.example.com/snap/v2/vtweb/%s", ref),
	}, nil
}

// QueryStatus returns the scripted status for the ref, PENDING if unknown.
func (m *MockPaymentGateway) QueryStatus(ref string) (GatewayStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if st, ok := m.statuses[ref]; ok {
		return st, nil
	}
	return GatewayPending, nil
}

// SetStatus scripts the status QueryStatus will report for a ref.
func (m *MockPaymentGateway) SetStatus(ref string, st GatewayStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[ref] = st
}

// FailNextCreate makes the next CreateCheckoutToken call return err.
func (m *MockPaymentGateway) FailNextCreate(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

// CreatedRefs returns the checkout refs created so far.
func (m *MockPaymentGateway) CreatedRefs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.created...)
}
