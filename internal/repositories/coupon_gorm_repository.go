package repositories

import (
	"fmt"
	"vastra/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCouponRepository is a GORM implementation of CouponRepository.
type GORMCouponRepository struct {
	db *gorm.DB
}

// NewGORMCouponRepository creates a new instance of GORMCouponRepository.
func NewGORMCouponRepository(db *gorm.DB) *GORMCouponRepository {
	return &GORMCouponRepository{
		db: db,
	}
}

// GetByCode retrieves a coupon by its code.
func (r *GORMCouponRepository) GetByCode(code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.First(&coupon, "code = ?", code).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("coupon %s not found", code)
		}
		return nil, fmt.Errorf("failed to get coupon %s: %w", code, err)
	}
	return &coupon, nil
}

// HasRedemption reports whether the customer already consumed the coupon.
func (r *GORMCouponRepository) HasRedemption(couponID, customerID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.CouponRedemption{}).
		Where("coupon_id = ? AND customer_id = ?", couponID, customerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check redemption of coupon %s: %w", couponID, err)
	}
	return count > 0, nil
}

// InsertRedemption inserts the (coupon, customer) marking. The unique index
// plus ON CONFLICT DO NOTHING makes the insert race-free: exactly one of
// two concurrent applies wins, the other reports false.
func (r *GORMCouponRepository) InsertRedemption(redemption *models.CouponRedemption) (bool, error) {
	if redemption.ID == "" {
		redemption.ID = uuid.New().String()
	}
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(redemption)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert coupon redemption: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Create inserts a new coupon.
func (r *GORMCouponRepository) Create(coupon *models.Coupon) error {
	if coupon.ID == "" {
		coupon.ID = uuid.New().String()
	}
	if err := r.db.Create(coupon).Error; err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}
