package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon is a percentage discount code. A customer may redeem a given code
// at most once; redemptions are tracked per (coupon, customer) pair.
type Coupon struct {
	ID              string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Code            string     `json:"code" gorm:"uniqueIndex;type:varchar(50)" validate:"required"`
	DiscountPercent float64    `json:"discount_percent" validate:"required,gt=0,lte=100"`
	Active          bool       `json:"active"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	gorm.Model
}

// Expired reports whether the coupon's expiry, if any, has passed.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// CouponRedemption marks a coupon as consumed by one customer. The unique
// index makes the marking idempotent under concurrent applies.
type CouponRedemption struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CouponID   string    `json:"coupon_id" gorm:"uniqueIndex:idx_coupon_customer;type:varchar(36)"`
	CustomerID string    `json:"customer_id" gorm:"uniqueIndex:idx_coupon_customer;type:varchar(36)"`
	CreatedAt  time.Time `json:"created_at"`
}
