package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus is the lifecycle stage of a booking.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"     // booked, waiting for staff confirmation
	StatusProcessing OrderStatus = "PROCESSING"  // confirmed, cleaner being assigned
	StatusInProgress OrderStatus = "IN_PROGRESS" // cleaner dispatched/on site
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid reports whether s is one of the five known statuses.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s admits no further status transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the transition s -> next is legal.
// The path is strictly forward: PENDING -> PROCESSING -> IN_PROGRESS ->
// COMPLETED, with CANCELLED reachable from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted
	}
	return false
}

// Order represents one booking of a cleaning service.
//
// Number is the human-facing order number quoted in WhatsApp messages and
// receipts; it is monotonic and distinct from the database ID.
type Order struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Number          int64          `gorm:"uniqueIndex;not null" json:"number"`
	Status          OrderStatus    `gorm:"not null;default:'PENDING';index" json:"status"`
	ScheduledDate   time.Time      `gorm:"not null" json:"scheduled_date"`
	Address         string         `gorm:"type:text;not null" json:"address"`
	ResolvedAddress string         `gorm:"type:text" json:"resolved_address,omitempty"` // reverse-geocoded, best effort
	Latitude        float64        `gorm:"not null" json:"latitude"`
	Longitude       float64        `gorm:"not null" json:"longitude"`
	Price           int64          `gorm:"not null" json:"price"` // package price at booking time

	CustomerID uint    `gorm:"not null;index" json:"customer_id"`
	Customer   User    `gorm:"foreignKey:CustomerID" json:"customer"`
	PackageID  uint    `gorm:"not null;index" json:"package_id"`
	Package    Package `gorm:"foreignKey:PackageID" json:"package"`

	Payment Payment      `gorm:"foreignKey:OrderID" json:"payment"`
	Tip     *Tip         `gorm:"foreignKey:OrderID" json:"tip,omitempty"`
	Rating  *Rating      `gorm:"foreignKey:OrderID" json:"rating,omitempty"`
	Photos  []OrderPhoto `gorm:"foreignKey:OrderID" json:"photos"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// VoidedAt marks an abandoned, unpaid gateway checkout. Voided orders
	// are hidden from customers; this is distinct from an explicit
	// cancellation (which leaves VoidedAt unset).
	VoidedAt *time.Time `gorm:"index" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsVoided reports whether the order was voided for a lapsed payment window.
func (o *Order) IsVoided() bool {
	return o.VoidedAt != nil
}

// BeforePhotos returns the before photos in upload order.
func (o *Order) BeforePhotos() []OrderPhoto {
	return o.photosOfKind(PhotoKindBefore)
}

// AfterPhotos returns the after photos in upload order.
func (o *Order) AfterPhotos() []OrderPhoto {
	return o.photosOfKind(PhotoKindAfter)
}

// HasAfterPhoto reports whether at least one after photo is attached.
func (o *Order) HasAfterPhoto() bool {
	return len(o.AfterPhotos()) > 0
}

func (o *Order) photosOfKind(kind PhotoKind) []OrderPhoto {
	var out []OrderPhoto
	for _, p := range o.Photos {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}
