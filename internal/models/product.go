package models

import "gorm.io/gorm"

// Product represents a catalog product. Stock is not kept here; the
// inventory ledger owns per-product counters, optionally split by size
// and/or color (see InventoryRecord).
type Product struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// InventoryRecord is one stock counter of the inventory ledger. A record
// with empty SizeCode and ColorName is the product-level counter; otherwise
// it counts a single size or color variant. Stock never goes below zero:
// every decrement is a compare-and-decrement against the live value.
type InventoryRecord struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string `json:"product_id" gorm:"index;type:varchar(36)"`
	SizeCode  string `json:"size,omitempty" gorm:"type:varchar(10)"`
	ColorName string `json:"color,omitempty" gorm:"type:varchar(50)"`
	Stock     int    `json:"stock" validate:"gte=0"`
	gorm.Model
}
