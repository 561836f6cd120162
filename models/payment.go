package models

import "time"

// PaymentMethod is how a booking is settled.
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "CASH"    // settled by staff after the visit
	PaymentMethodGateway PaymentMethod = "GATEWAY" // hosted checkout, settled asynchronously
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodGateway
}

// PaymentStatus is the settlement state of a payment. Transitions are
// one-directional: PENDING -> PAID or PENDING -> EXPIRED, never back.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentExpired PaymentStatus = "EXPIRED"
)

// Payment tracks settlement for exactly one order. It is created in the
// same transaction as the order and its status never reverts.
//
// For CASH the status is advanced to PAID only by staff. For GATEWAY the
// status is advanced only after a server-side query of the gateway; the
// checkout widget's client-side callbacks are never trusted directly.
type Payment struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	OrderID   uint          `gorm:"uniqueIndex;not null" json:"order_id"`
	Method    PaymentMethod `gorm:"not null" json:"method"`
	Status    PaymentStatus `gorm:"not null;default:'PENDING'" json:"status"`
	Amount    int64         `gorm:"not null;check:amount >= 0" json:"amount"`
	// CheckoutRef is the gateway-side reference for the hosted checkout
	// (unused for cash orders).
	CheckoutRef string    `json:"checkout_ref,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// Satisfied reports whether the payment no longer blocks fulfilment
// actions: cash settles after the visit, gateway must already be PAID.
func (p *Payment) Satisfied() bool {
	return p.Method == PaymentMethodCash || p.Status == PaymentPaid
}
