package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/lokaclean/lokaclean-api/models"
)

// orderFetcher is the read side of the persistence boundary the watcher
// needs. *OrderService satisfies it.
type orderFetcher interface {
	Get(id uint) (*models.Order, error)
}

// OrderWatcher re-fetches one order on a fixed interval to detect
// transitions driven by other actors (staff console, gateway settlement)
// and fires the dispatch cue exactly once, on the edge into IN_PROGRESS.
//
// The last observed status is explicit per-watcher state, updated only
// after comparison, so repeated polls of the same status never re-fire
// and a failed poll never corrupts it.
type OrderWatcher struct {
	orders     orderFetcher
	notifier   Notifier
	lastStatus models.OrderStatus
}

// NewOrderWatcher creates a watcher with no observations yet.
func NewOrderWatcher(orders orderFetcher, notifier Notifier) *OrderWatcher {
	return &OrderWatcher{orders: orders, notifier: notifier}
}

// Observe records a freshly fetched status and reports whether this poll
// crossed the edge into IN_PROGRESS.
func (w *OrderWatcher) Observe(status models.OrderStatus) (fired bool) {
	fired = status == models.StatusInProgress && w.lastStatus != models.StatusInProgress
	w.lastStatus = status
	return fired
}

// LastStatus returns the last successfully observed status ("" before the
// first successful poll).
func (w *OrderWatcher) LastStatus() models.OrderStatus {
	return w.lastStatus
}

// Run polls the order every interval until it reaches a terminal status,
// disappears (voided or deleted), or ctx is done. Transient fetch errors
// are logged and skipped; they are not transitions.
func (w *OrderWatcher) Run(ctx context.Context, orderID uint, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := w.poll(orderID); done {
				return
			}
		}
	}
}

// poll performs one fetch-compare-react cycle. Returns true when watching
// should stop.
func (w *OrderWatcher) poll(orderID uint) bool {
	order, err := w.orders.Get(orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrOrderVoided) {
			return true
		}
		log.Printf("watcher: transient fetch failure for order %d: %v", orderID, err)
		return false
	}

	if w.Observe(order.Status) {
		if err := w.notifier.CleanerDispatched(order); err != nil {
			log.Printf("watcher: dispatch cue failed for order %d: %v", orderID, err)
		}
	}

	return order.Status.IsTerminal()
}
