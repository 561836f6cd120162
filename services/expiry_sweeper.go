package services

import (
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/lokaclean/lokaclean-api/models"
)

// ExpirySweeper voids abandoned gateway checkouts server-side. Voiding is
// also enforced lazily on every read (OrderService.Get); the sweeper just
// makes sure orders nobody reads anymore still get cleaned up, and gives
// late settlements one last chance before voiding.
type ExpirySweeper struct {
	db      *gorm.DB
	orders  *OrderService
	gateway PaymentGateway
	nowFunc func() time.Time
	cron    *cron.Cron
}

// NewExpirySweeper creates an ExpirySweeper.
func NewExpirySweeper(db *gorm.DB, orders *OrderService, gateway PaymentGateway) *ExpirySweeper {
	return &ExpirySweeper{
		db:      db,
		orders:  orders,
		gateway: gateway,
		nowFunc: time.Now,
	}
}

// Start schedules the sweep to run every minute.
func (s *ExpirySweeper) Start() {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc("* * * * *", s.Sweep); err != nil {
		log.Printf("sweeper: failed to schedule: %v", err)
		return
	}
	s.cron.Start()
	log.Println("Expiry sweeper started")
}

// Stop stops the scheduled sweeps.
func (s *ExpirySweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep processes every gateway order whose payment window plus tolerance
// has lapsed while its payment is still pending.
func (s *ExpirySweeper) Sweep() {
	cutoff := s.nowFunc().Add(-(models.PaymentWindow + models.VoidTolerance))

	var ids []uint
	err := s.db.Model(&models.Order{}).
		Joins("JOIN payments ON payments.order_id = orders.id").
		Where("payments.method = ? AND payments.status = ?", models.PaymentMethodGateway, models.PaymentPending).
		Where("orders.status <> ? AND orders.voided_at IS NULL", models.StatusCancelled).
		Where("orders.created_at < ?", cutoff).
		Pluck("orders.id", &ids).Error
	if err != nil {
		log.Printf("sweeper: candidate query failed: %v", err)
		return
	}

	for _, id := range ids {
		s.sweepOne(id)
	}
}

// sweepOne gives the order one last server-side gateway query: a
// settlement that landed at the deadline marks it paid, anything else
// voids it.
func (s *ExpirySweeper) sweepOne(id uint) {
	var payment models.Payment
	if err := s.db.Where("order_id = ?", id).First(&payment).Error; err != nil {
		log.Printf("sweeper: order %d: load payment: %v", id, err)
		return
	}

	if payment.CheckoutRef != "" {
		status, err := s.gateway.QueryStatus(payment.CheckoutRef)
		if err != nil {
			// Gateway unreachable; leave the order for the next sweep
			// rather than voiding on incomplete information.
			log.Printf("sweeper: order %d: gateway query failed: %v", id, err)
			return
		}
		if status == GatewayPaid {
			if _, err := s.orders.MarkPaid(id); err != nil {
				log.Printf("sweeper: order %d: mark paid: %v", id, err)
			} else {
				log.Printf("sweeper: order %d settled at the deadline, kept", id)
			}
			return
		}
	}

	// Get enforces the void rule for lapsed orders.
	_, err := s.orders.Get(id)
	switch {
	case errors.Is(err, ErrOrderVoided):
		log.Printf("sweeper: order %d voided (payment window passed)", id)
	case err != nil:
		log.Printf("sweeper: order %d: %v", id, err)
	}
}
