package models

import (
	"time"

	"gorm.io/gorm"
)

// Package represents a cleaning service package customers can book
// (e.g. "Studio Deep Clean"). Price is captured onto the order at booking
// time so later price edits never affect existing orders.
type Package struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null;check:price >= 0" json:"price"` // IDR, no minor units
	DurationMin int            `gorm:"not null;default:120" json:"duration_min"`
	Active      bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Package model
func (Package) TableName() string {
	return "packages"
}
