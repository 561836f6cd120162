package models

import "time"

// PhotoKind distinguishes before-visit and after-visit photos.
type PhotoKind string

const (
	PhotoKindBefore PhotoKind = "before"
	PhotoKindAfter  PhotoKind = "after"
)

// MaxPhotosPerKind bounds how many photos of one kind an order can carry.
const MaxPhotosPerKind = 4

// OrderPhoto is one stored photo of an order's location state. StorageKey
// is an opaque key into photo storage; Position preserves upload order.
type OrderPhoto struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	Kind       PhotoKind `gorm:"not null;index" json:"kind"`
	Position   int       `gorm:"not null" json:"position"`
	StorageKey string    `gorm:"not null" json:"storage_key"`
	URL        string    `gorm:"-" json:"url,omitempty"` // presigned, computed on read
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the OrderPhoto model
func (OrderPhoto) TableName() string {
	return "order_photos"
}
