package models

import "time"

// Action is a user action that may or may not be permitted on an order
// depending on its current snapshot.
type Action string

const (
	ActionPay              Action = "PAY"
	ActionUploadAfterPhoto Action = "UPLOAD_AFTER_PHOTO"
	ActionTip              Action = "TIP"
	ActionComplete         Action = "COMPLETE"
	ActionRate             Action = "RATE"
)

// GracePeriod is how long after the scheduled visit time fulfilment
// actions (after photo, tip, completion) stay locked, preventing
// premature completion claims.
const GracePeriod = 5 * time.Minute

// ActionSet is the set of actions currently permitted on an order.
type ActionSet map[Action]bool

// Has reports whether a is in the set.
func (s ActionSet) Has(a Action) bool {
	return s[a]
}

// List returns the permitted actions in a stable order, for JSON output.
func (s ActionSet) List() []Action {
	all := []Action{ActionPay, ActionUploadAfterPhoto, ActionTip, ActionComplete, ActionRate}
	var out []Action
	for _, a := range all {
		if s[a] {
			out = append(out, a)
		}
	}
	return out
}

// PermittedActions computes which actions the customer may take on the
// order right now. It is a pure function of the order snapshot and the
// clock: no I/O, never cached. Handlers re-evaluate it server-side before
// accepting any command, and return it with every order so clients render
// from the same rules.
func PermittedActions(o *Order, now time.Time) ActionSet {
	set := ActionSet{}
	if o.IsVoided() {
		return set
	}

	set[ActionPay] = o.Payment.Method == PaymentMethodGateway &&
		o.Payment.Status == PaymentPending &&
		o.Status != StatusCancelled

	// The fulfilment gate shared by photo upload, tip and completion:
	// cleaner on site, grace period elapsed, payment settled (or cash).
	fulfil := o.Status == StatusInProgress &&
		!now.Before(o.ScheduledDate.Add(GracePeriod)) &&
		o.Payment.Satisfied()

	set[ActionUploadAfterPhoto] = fulfil
	set[ActionTip] = fulfil && o.HasAfterPhoto() && o.Tip == nil
	set[ActionComplete] = fulfil && o.HasAfterPhoto() && o.Tip != nil
	set[ActionRate] = o.Status == StatusCompleted && o.Rating == nil

	return set
}

// Completion blocker reasons, surfaced verbatim in precondition errors so
// the customer knows which step is missing.
const (
	BlockerNotInProgress  = "order is not in progress"
	BlockerNoAfterPhoto   = "no after photo uploaded"
	BlockerNoTipDecision  = "tip not yet recorded"
	BlockerGracePeriod    = "scheduled time plus grace period not yet reached"
	BlockerPaymentPending = "payment not settled"
)

// CompletionBlocker returns the first unmet completion precondition, or
// "" when the order may be completed. Checks run in workflow order so the
// reported step is the next one the customer must perform.
func CompletionBlocker(o *Order, now time.Time) string {
	if o.Status != StatusInProgress {
		return BlockerNotInProgress
	}
	if !o.Payment.Satisfied() {
		return BlockerPaymentPending
	}
	if now.Before(o.ScheduledDate.Add(GracePeriod)) {
		return BlockerGracePeriod
	}
	if !o.HasAfterPhoto() {
		return BlockerNoAfterPhoto
	}
	if o.Tip == nil {
		return BlockerNoTipDecision
	}
	return ""
}
