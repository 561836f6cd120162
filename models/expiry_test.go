package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func expiryOrder(method PaymentMethod, status PaymentStatus, createdAt time.Time) *Order {
	return &Order{
		Status:    StatusPending,
		CreatedAt: createdAt,
		Payment:   Payment{Method: method, Status: status},
	}
}

func TestOrder_Voidable_Boundaries(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	deadline := t0.Add(PaymentWindow)

	tests := []struct {
		name     string
		order    *Order
		now      time.Time
		voidable bool
	}{
		{"well within window", expiryOrder(PaymentMethodGateway, PaymentPending, t0), t0.Add(30 * time.Minute), false},
		{"exactly at deadline", expiryOrder(PaymentMethodGateway, PaymentPending, t0), deadline, false},
		{"inside tolerance", expiryOrder(PaymentMethodGateway, PaymentPending, t0), deadline.Add(30 * time.Second), false},
		{"one second before tolerance ends", expiryOrder(PaymentMethodGateway, PaymentPending, t0), deadline.Add(VoidTolerance - time.Second), false},
		{"exactly at deadline plus tolerance", expiryOrder(PaymentMethodGateway, PaymentPending, t0), deadline.Add(VoidTolerance), true},
		{"one second past tolerance", expiryOrder(PaymentMethodGateway, PaymentPending, t0), deadline.Add(VoidTolerance + time.Second), true},
		{"cash orders never void", expiryOrder(PaymentMethodCash, PaymentPending, t0), deadline.Add(24 * time.Hour), false},
		{"paid gateway orders never void", expiryOrder(PaymentMethodGateway, PaymentPaid, t0), deadline.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.voidable, tt.order.Voidable(tt.now))
		})
	}
}

func TestOrder_Voidable_AlreadyCancelledOrVoided(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	long := t0.Add(2 * time.Hour)

	cancelled := expiryOrder(PaymentMethodGateway, PaymentPending, t0)
	cancelled.Status = StatusCancelled
	assert.False(t, cancelled.Voidable(long))

	voided := expiryOrder(PaymentMethodGateway, PaymentPending, t0)
	voidedAt := t0.Add(90 * time.Minute)
	voided.VoidedAt = &voidedAt
	assert.False(t, voided.Voidable(long), "voiding is not re-applied")
}

func TestOrder_PaymentWindowRemaining(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	order := expiryOrder(PaymentMethodGateway, PaymentPending, t0)

	assert.Equal(t, PaymentWindow, order.PaymentWindowRemaining(t0))
	assert.Equal(t, time.Minute, order.PaymentWindowRemaining(t0.Add(59*time.Minute)))
	assert.Equal(t, time.Duration(0), order.PaymentWindowRemaining(t0.Add(61*time.Minute)), "clamped at zero")
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{60 * time.Minute, "60:00"},
		{time.Minute, "01:00"},
		{59 * time.Second, "00:59"},
		{90500 * time.Millisecond, "01:30"},
		{0, "00:00"},
		{-time.Second, "00:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCountdown(tt.d))
	}
}

// A gateway checkout one minute before its deadline is still payable and
// shows a live countdown; two minutes later the order is voidable.
func TestExpiry_CheckoutTimeline(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	order := expiryOrder(PaymentMethodGateway, PaymentPending, t0)

	at59 := t0.Add(59 * time.Minute)
	assert.False(t, order.Voidable(at59))
	assert.True(t, PermittedActions(order, at59).Has(ActionPay))
	assert.Equal(t, "01:00", FormatCountdown(order.PaymentWindowRemaining(at59)))

	at61 := t0.Add(61 * time.Minute)
	assert.True(t, order.Voidable(at61))
}
