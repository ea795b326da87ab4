package services

import (
	"math"
	"time"

	"vastra/internal/logger"
	"vastra/internal/models"
	"vastra/internal/repositories"

	"go.uber.org/zap"
)

// CouponService validates discount codes and records their consumption.
// Validation is a pure check; consumption is idempotent per customer.
type CouponService struct {
	repo repositories.CouponRepository
	now  func() time.Time
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo repositories.CouponRepository) *CouponService {
	return &CouponService{
		repo: repo,
		now:  time.Now,
	}
}

// Validate checks that the code exists, is active, has not expired and has
// not been consumed by this customer. It has no side effects.
func (s *CouponService) Validate(code, customerID string) (*models.Coupon, error) {
	coupon, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, ErrInvalidCoupon
	}
	if !coupon.Active {
		return nil, ErrInvalidCoupon
	}
	if coupon.Expired(s.now()) {
		return nil, ErrCouponExpired
	}
	used, err := s.repo.HasRedemption(coupon.ID, customerID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrCouponAlreadyUsed
	}
	return coupon, nil
}

// MarkApplied records the coupon as consumed by the customer. A repeat call
// for the same pair is a no-op: the unique redemption row absorbs both
// sequential and concurrent duplicates. The returned error is informational
// only; order placement never fails on it.
func (s *CouponService) MarkApplied(code, customerID string) error {
	coupon, err := s.repo.GetByCode(code)
	if err != nil {
		return ErrInvalidCoupon
	}
	inserted, err := s.repo.InsertRedemption(&models.CouponRedemption{
		CouponID:   coupon.ID,
		CustomerID: customerID,
	})
	if err != nil {
		return err
	}
	if !inserted {
		logger.L().Debug("coupon already marked applied",
			zap.String("code", code),
			zap.String("customer_id", customerID),
		)
	}
	return nil
}

// DiscountAmount computes the discount for a subtotal:
// round(subtotal * percent / 100).
func DiscountAmount(subtotal, percent float64) float64 {
	return math.Round(subtotal * percent / 100)
}
