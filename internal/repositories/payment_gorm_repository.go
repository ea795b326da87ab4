package repositories

import (
	"fmt"
	"time"
	"vastra/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPaymentRepository is a GORM implementation of PaymentRepository.
type GORMPaymentRepository struct {
	db *gorm.DB
}

// NewGORMPaymentRepository creates a new instance of GORMPaymentRepository.
func NewGORMPaymentRepository(db *gorm.DB) *GORMPaymentRepository {
	return &GORMPaymentRepository{
		db: db,
	}
}

// Create inserts a new payment record.
func (r *GORMPaymentRepository) Create(record *models.PaymentRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	return nil
}

// GetByOrderID retrieves the payment record attached to an order.
func (r *GORMPaymentRepository) GetByOrderID(orderID string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	if err := r.db.First(&record, "order_id = ?", orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("payment record for order %s not found", orderID)
		}
		return nil, fmt.Errorf("failed to get payment record for order %s: %w", orderID, err)
	}
	return &record, nil
}

// GetByGatewayOrderID resolves the record a gateway callback refers to.
func (r *GORMPaymentRepository) GetByGatewayOrderID(gatewayOrderID string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	if err := r.db.First(&record, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("payment record for gateway order %s not found", gatewayOrderID)
		}
		return nil, fmt.Errorf("failed to get payment record for gateway order %s: %w", gatewayOrderID, err)
	}
	return &record, nil
}

// AttachProof stores a manual-transfer reference. The status precondition
// keeps a second submission from overwriting an already-verified payment.
func (r *GORMPaymentRepository) AttachProof(orderID string, reference string) (bool, error) {
	res := r.db.Model(&models.PaymentRecord{}).
		Where("order_id = ? AND status IN ?", orderID,
			[]models.PaymentRecordStatus{models.PaymentInitiated, models.PaymentProofSubmitted}).
		Updates(map[string]interface{}{
			"proof_reference": reference,
			"status":          models.PaymentProofSubmitted,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to attach proof for order %s: %w", orderID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MarkCaptured moves the record to captured exactly once. The status
// precondition in the WHERE clause is what makes duplicated gateway
// callbacks a no-op: only the first caller sees a row update.
func (r *GORMPaymentRepository) MarkCaptured(id string, gatewayPaymentID string) (bool, error) {
	res := r.db.Model(&models.PaymentRecord{}).
		Where("id = ? AND status <> ?", id, models.PaymentCaptured).
		Updates(map[string]interface{}{
			"status":             models.PaymentCaptured,
			"gateway_payment_id": gatewayPaymentID,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark payment %s captured: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}
