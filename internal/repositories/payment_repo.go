package repositories

import (
	"vastra/internal/models"
)

// PaymentRepository stores payment attempts for manual and gateway orders.
// MarkCaptured is the idempotency gate for gateway callbacks: it moves a
// record to captured at most once and reports false on every later call.
type PaymentRepository interface {
	Create(record *models.PaymentRecord) error
	GetByOrderID(orderID string) (*models.PaymentRecord, error)
	GetByGatewayOrderID(gatewayOrderID string) (*models.PaymentRecord, error)
	AttachProof(orderID string, reference string) (bool, error)
	MarkCaptured(id string, gatewayPaymentID string) (bool, error)
}
