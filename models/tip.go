package models

import "time"

// Tip is a one-time gratuity decision for an order. An amount of 0 is a
// valid, explicit "no tip" and is distinct from no Tip row at all (not yet
// decided). Once created a tip is immutable.
type Tip struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	Amount    int64     `gorm:"not null;check:amount >= 0" json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Tip model
func (Tip) TableName() string {
	return "tips"
}
