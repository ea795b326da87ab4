package repositories

import (
	"vastra/internal/models"
)

// CouponRepository stores coupons and their per-customer redemptions.
// InsertRedemption reports false when the (coupon, customer) pair already
// holds a redemption, making the marking idempotent.
type CouponRepository interface {
	GetByCode(code string) (*models.Coupon, error)
	HasRedemption(couponID, customerID string) (bool, error)
	InsertRedemption(redemption *models.CouponRedemption) (bool, error)
	Create(coupon *models.Coupon) error
}
