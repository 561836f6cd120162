package services

import (
	"errors"
	"time"

	"github.com/lokaclean/lokaclean-api/models"
	"gorm.io/gorm"
)

// firstOrderNumber seeds the human-facing order number sequence. Numbers
// are monotonic and distinct from database IDs.
const firstOrderNumber = 1000

// OrderService owns every read and mutation of order records. All
// status-mutating commands run as atomic read-modify-writes (a transaction
// with a conditional status update) so a command racing a staff action or
// a gateway settlement loses cleanly instead of overwriting it.
type OrderService struct {
	db      *gorm.DB
	nowFunc func() time.Time
}

// NewOrderService creates an OrderService on the given database.
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, nowFunc: time.Now}
}

// SetNowFunc overrides the service clock (primarily for testing).
func (s *OrderService) SetNowFunc(now func() time.Time) {
	s.nowFunc = now
}

// CreateOrderInput is the validated booking submission.
type CreateOrderInput struct {
	CustomerID      uint
	PackageID       uint
	ScheduledDate   time.Time
	Address         string
	ResolvedAddress string
	Latitude        float64
	Longitude       float64
	Method          models.PaymentMethod
	BeforePhotoKeys []string
}

func (in *CreateOrderInput) validate() error {
	if in.Address == "" {
		return &ValidationError{Field: "address", Message: "must not be empty"}
	}
	if in.Latitude < -90 || in.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: "must be between -90 and 90"}
	}
	if in.Longitude < -180 || in.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: "must be between -180 and 180"}
	}
	if !in.Method.IsValid() {
		return &ValidationError{Field: "payment_method", Message: "must be CASH or GATEWAY"}
	}
	if len(in.BeforePhotoKeys) < 1 || len(in.BeforePhotoKeys) > models.MaxPhotosPerKind {
		return &ValidationError{Field: "before_photos", Message: "between 1 and 4 photos required"}
	}
	if in.ScheduledDate.IsZero() {
		return &ValidationError{Field: "scheduled_date", Message: "must be set"}
	}
	return nil
}

// Create books a new order. The order, its payment sub-record (PENDING,
// method fixed at creation), the before photos and the order number are
// all written in one transaction: a booking either fully exists or not
// at all.
func (s *OrderService) Create(in CreateOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var orderID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var pkg models.Package
		if err := tx.First(&pkg, in.PackageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ValidationError{Field: "package_id", Message: "unknown package"}
			}
			return err
		}

		var maxNumber int64
		if err := tx.Raw("SELECT COALESCE(MAX(number), ?) FROM orders", firstOrderNumber).Scan(&maxNumber).Error; err != nil {
			return err
		}

		order := models.Order{
			Number:          maxNumber + 1,
			Status:          models.StatusPending,
			ScheduledDate:   in.ScheduledDate,
			Address:         in.Address,
			ResolvedAddress: in.ResolvedAddress,
			Latitude:        in.Latitude,
			Longitude:       in.Longitude,
			Price:           pkg.Price,
			CustomerID:      in.CustomerID,
			PackageID:       pkg.ID,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		payment := models.Payment{
			OrderID: order.ID,
			Method:  in.Method,
			Status:  models.PaymentPending,
			Amount:  pkg.Price,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		for i, key := range in.BeforePhotoKeys {
			photo := models.OrderPhoto{
				OrderID:    order.ID,
				Kind:       models.PhotoKindBefore,
				Position:   i,
				StorageKey: key,
			}
			if err := tx.Create(&photo).Error; err != nil {
				return err
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(s.db, orderID)
}

// Get returns the order, enforcing the void rule at read time: a gateway
// order whose payment window plus tolerance has lapsed is voided here and
// reported as ErrOrderVoided. Clients never decide voiding themselves.
func (s *OrderService) Get(id uint) (*models.Order, error) {
	order, err := s.load(s.db, id)
	if err != nil {
		return nil, err
	}
	if order.IsVoided() {
		return nil, ErrOrderVoided
	}
	if order.Voidable(s.nowFunc()) {
		err := s.void(order.ID)
		if errors.Is(err, ErrStatusConflict) {
			// A settlement or cancellation raced the void and won.
			return s.load(s.db, id)
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrOrderVoided
	}
	return order, nil
}

// List returns a customer's orders, most recent first. Voided orders are
// hidden; explicitly cancelled orders remain visible.
func (s *OrderService) List(customerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.preloaded(s.db).
		Where("customer_id = ? AND voided_at IS NULL", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAll returns every non-voided order, most recent first. Staff only.
func (s *OrderService) ListAll() ([]models.Order, error) {
	var orders []models.Order
	err := s.preloaded(s.db).
		Where("voided_at IS NULL").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// Transition applies the externally-triggered status change expected ->
// next (staff confirmation, dispatch, cancellation). The update is
// conditional on the current status; a concurrent change surfaces as
// ErrStatusConflict, never as a lost update.
func (s *OrderService) Transition(id uint, expected, next models.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, &ValidationError{Field: "status", Message: "unknown status"}
	}
	if !expected.CanTransitionTo(next) {
		return nil, &PreconditionError{Reason: "illegal transition " + string(expected) + " -> " + string(next)}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.transitionLocked(tx, id, expected, next)
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db, id)
}

// transitionLocked performs the conditional status update inside an open
// transaction.
func (s *OrderService) transitionLocked(tx *gorm.DB, id uint, expected, next models.OrderStatus) error {
	updates := map[string]interface{}{"status": next, "updated_at": s.nowFunc()}
	if next == models.StatusCompleted {
		updates["completed_at"] = s.nowFunc()
	}
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrOrderNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

// AttachAfterPhotos appends 1..4 after photos, only while the upload gate
// is open (IN_PROGRESS, grace period elapsed, payment satisfied). The
// combined list stays bounded at 4.
func (s *OrderService) AttachAfterPhotos(id uint, keys []string) (*models.Order, error) {
	if len(keys) < 1 || len(keys) > models.MaxPhotosPerKind {
		return nil, &ValidationError{Field: "after_photos", Message: "between 1 and 4 photos required"}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if !models.PermittedActions(order, s.nowFunc()).Has(models.ActionUploadAfterPhoto) {
			return &PreconditionError{Reason: "after photo upload not permitted yet"}
		}
		existing := order.AfterPhotos()
		if len(existing)+len(keys) > models.MaxPhotosPerKind {
			return &ValidationError{Field: "after_photos", Message: "at most 4 after photos per order"}
		}
		for i, key := range keys {
			photo := models.OrderPhoto{
				OrderID:    order.ID,
				Kind:       models.PhotoKindAfter,
				Position:   len(existing) + i,
				StorageKey: key,
			}
			if err := tx.Create(&photo).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db, id)
}

// RecordTip stores the customer's one-time tip decision. Zero is a valid
// explicit "no tip". A second submission is a conflict and leaves the
// stored amount untouched, so the call is safe to retry after a network
// blip (the retry surfaces the conflict, not a duplicate).
func (s *OrderService) RecordTip(id uint, amount int64) (*models.Order, error) {
	if amount < 0 {
		return nil, &ValidationError{Field: "amount", Message: "must be a non-negative integer"}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if order.Tip != nil {
			return ErrConflict
		}
		if !models.PermittedActions(order, s.nowFunc()).Has(models.ActionTip) {
			return &PreconditionError{Reason: "tip not permitted yet"}
		}
		return tx.Create(&models.Tip{OrderID: order.ID, Amount: amount}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db, id)
}

// Complete performs IN_PROGRESS -> COMPLETED after re-validating every
// completion precondition server-side. Calling it again after success is
// a no-op returning the already-completed order, so clients can retry
// safely.
func (s *OrderService) Complete(id uint) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if order.Status == models.StatusCompleted {
			return nil // idempotent repeat
		}
		if blocker := models.CompletionBlocker(order, s.nowFunc()); blocker != "" {
			return &PreconditionError{Reason: blocker}
		}
		return s.transitionLocked(tx, id, models.StatusInProgress, models.StatusCompleted)
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db, id)
}

// RecordRating stores the customer's one-time rating of a completed
// order. Value must be 1..5; a second rating is a conflict.
func (s *OrderService) RecordRating(id uint, value int, review string) (*models.Order, error) {
	if value < 1 || value > 5 {
		return nil, &ValidationError{Field: "value", Message: "must be between 1 and 5"}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if order.Rating != nil {
			return ErrConflict
		}
		if !models.PermittedActions(order, s.nowFunc()).Has(models.ActionRate) {
			return &PreconditionError{Reason: "order not completed yet"}
		}
		return tx.Create(&models.Rating{OrderID: order.ID, Value: value, Review: review}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db, id)
}

// MarkPaid advances the payment to PAID. This is the privileged path:
// staff settling cash after the visit, or the reconciler after a
// server-side gateway status query confirmed settlement. Already-paid is
// a no-op so settlement callbacks can be retried.
func (s *OrderService) MarkPaid(id uint) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		if order.Payment.Status == models.PaymentPaid {
			return nil
		}
		if order.Payment.Status == models.PaymentExpired {
			return &PreconditionError{Reason: "payment window passed"}
		}
		now := s.nowFunc()
		res := tx.Model(&models.Payment{}).
			Where("order_id = ? AND status = ?", id, models.PaymentPending).
			Updates(map[string]interface{}{"status": models.PaymentPaid, "paid_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db, id)
}

// SetCheckoutRef records the gateway-side reference created for the
// order's hosted checkout.
func (s *OrderService) SetCheckoutRef(id uint, ref string) error {
	res := s.db.Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", id, models.PaymentPending).
		Update("checkout_ref", ref)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

// Cancel moves a non-terminal order to CANCELLED. Cancelling an already
// cancelled order is a no-op; cancelling a completed order fails.
func (s *OrderService) Cancel(id uint) (*models.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.loadForUpdate(tx, id)
		if err != nil {
			return err
		}
		switch order.Status {
		case models.StatusCancelled:
			return nil
		case models.StatusCompleted:
			return &PreconditionError{Reason: "completed orders cannot be cancelled"}
		}
		return s.transitionLocked(tx, id, order.Status, models.StatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	return s.load(s.db, id)
}

// void marks the order as an abandoned unpaid checkout: CANCELLED with
// voided_at set (hidden from customers) and payment EXPIRED. Soft, so the
// record stays auditable; conditional, so a settlement racing the void
// wins.
func (s *OrderService) void(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		now := s.nowFunc()
		res := tx.Model(&models.Payment{}).
			Where("order_id = ? AND method = ? AND status = ?", id, models.PaymentMethodGateway, models.PaymentPending).
			Update("status", models.PaymentExpired)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Paid or expired meanwhile; nothing to void.
			return ErrStatusConflict
		}
		return tx.Model(&models.Order{}).
			Where("id = ? AND status <> ?", id, models.StatusCompleted).
			Updates(map[string]interface{}{"status": models.StatusCancelled, "voided_at": now}).Error
	})
}

// VoidIfExpired voids the order when its payment window has lapsed,
// reporting ErrOrderVoided; otherwise it returns the live order. The
// expiry sweeper and read path share this rule through Get.
func (s *OrderService) VoidIfExpired(id uint) (*models.Order, error) {
	return s.Get(id)
}

func (s *OrderService) preloaded(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Package").
		Preload("Payment").
		Preload("Tip").
		Preload("Rating").
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_photos.kind, order_photos.position")
		})
}

func (s *OrderService) load(db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := s.preloaded(db).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// loadForUpdate reads the order inside a mutation transaction and rejects
// voided orders up front.
func (s *OrderService) loadForUpdate(tx *gorm.DB, id uint) (*models.Order, error) {
	order, err := s.load(tx, id)
	if err != nil {
		return nil, err
	}
	if order.IsVoided() {
		return nil, ErrOrderVoided
	}
	return order, nil
}
