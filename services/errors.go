package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the order service. Controllers map these to
// HTTP responses; nothing below this layer knows about HTTP.
var (
	// ErrOrderNotFound means no order exists for the given id (or the
	// caller may not see it).
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderVoided means the order's payment window lapsed without
	// payment and the order was voided. Presented to customers as
	// "payment window passed", distinct from an explicit cancellation.
	ErrOrderVoided = errors.New("order voided: payment window passed")

	// ErrConflict means a once-only fact (tip, rating) was submitted a
	// second time. The stored value is unchanged.
	ErrConflict = errors.New("already recorded")

	// ErrStatusConflict means a conditional status transition found the
	// order in a different state than expected, usually because a
	// concurrent actor (staff console, gateway settlement) got there
	// first. Callers should re-fetch and re-evaluate.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// PreconditionError reports an action attempted outside its permitted
// window. Reason matches one of the action gate's named conditions so the
// client can tell the customer which step is missing.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// ValidationError reports malformed input rejected before any state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
