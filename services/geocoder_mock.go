package services

import (
	"context"
	"sync"
)

// MockGeocoder returns a scripted address for any coordinates.
type MockGeocoder struct {
	mu      sync.Mutex
	address string
	err     error
	calls   int
}

// NewMockGeocoder creates a mock geocoder resolving to the given address.
func NewMockGeocoder(address string) *MockGeocoder {
	return &MockGeocoder{address: address}
}

// SetAsMockForTesting sets this mock as the global geocoder instance.
func (m *MockGeocoder) SetAsMockForTesting() {
	SetGeocoder(m)
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.address, nil
}

// FailWith makes every lookup return err.
func (m *MockGeocoder) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many lookups were made.
func (m *MockGeocoder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
