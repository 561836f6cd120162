package models

import (
	"fmt"
	"time"
)

const (
	// PaymentWindow is how long a gateway checkout stays payable after
	// the order is created.
	PaymentWindow = 60 * time.Minute
	// VoidTolerance is the slack past the payment window before an
	// unpaid gateway order is actually voided, covering settlements
	// that land right at the deadline.
	VoidTolerance = 60 * time.Second
)

// PaymentDeadline returns when the order's payment window closes.
func (o *Order) PaymentDeadline() time.Time {
	return o.CreatedAt.Add(PaymentWindow)
}

// PaymentWindowRemaining returns how long the order stays payable,
// clamped at zero. Only meaningful for gateway orders with a pending
// payment; used to drive the checkout countdown.
func (o *Order) PaymentWindowRemaining(now time.Time) time.Duration {
	rem := o.PaymentDeadline().Sub(now)
	if rem < 0 {
		return 0
	}
	return rem
}

// Voidable reports whether the order must now be treated as an abandoned
// checkout: gateway method, still unpaid, not already cancelled or
// voided, and the payment window plus tolerance has fully lapsed. Exactly
// at the deadline (or within the tolerance) the order is still live.
func (o *Order) Voidable(now time.Time) bool {
	if o.Payment.Method != PaymentMethodGateway {
		return false
	}
	if o.Payment.Status != PaymentPending {
		return false
	}
	if o.Status == StatusCancelled || o.IsVoided() {
		return false
	}
	return !now.Before(o.PaymentDeadline().Add(VoidTolerance))
}

// FormatCountdown renders a remaining duration as MM:SS for checkout
// display, rounding down to whole seconds.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
