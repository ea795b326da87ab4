package repositories

import (
	"fmt"
	"sync"
	"vastra/internal/models"

	"github.com/google/uuid"
)

// MockCouponRepository is an in-memory implementation of CouponRepository.
type MockCouponRepository struct {
	coupons     map[string]models.Coupon // keyed by code
	redemptions map[string]bool          // keyed by couponID+"/"+customerID
	mu          sync.Mutex
}

// NewMockCouponRepository creates a new instance of MockCouponRepository.
func NewMockCouponRepository() *MockCouponRepository {
	return &MockCouponRepository{
		coupons:     make(map[string]models.Coupon),
		redemptions: make(map[string]bool),
	}
}

// GetByCode returns a coupon by its code.
func (r *MockCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon, ok := r.coupons[code]
	if !ok {
		return nil, fmt.Errorf("coupon %s not found", code)
	}
	return &coupon, nil
}

// HasRedemption reports whether the customer already consumed the coupon.
func (r *MockCouponRepository) HasRedemption(couponID, customerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.redemptions[couponID+"/"+customerID], nil
}

// InsertRedemption inserts the marking; under the lock the duplicate check
// and the insert are one step, mirroring the SQL ON CONFLICT DO NOTHING.
func (r *MockCouponRepository) InsertRedemption(redemption *models.CouponRedemption) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := redemption.CouponID + "/" + redemption.CustomerID
	if r.redemptions[key] {
		return false, nil
	}
	if redemption.ID == "" {
		redemption.ID = uuid.New().String()
	}
	r.redemptions[key] = true
	return true, nil
}

// Create adds a new coupon.
func (r *MockCouponRepository) Create(coupon *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	r.coupons[coupon.Code] = *coupon
	return nil
}
