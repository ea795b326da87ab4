package repositories

import (
	"fmt"
	"sync"
	"time"
	"vastra/internal/models"

	"github.com/google/uuid"
)

// MockPaymentRepository is an in-memory implementation of PaymentRepository.
type MockPaymentRepository struct {
	records map[string]models.PaymentRecord
	mu      sync.Mutex
}

// NewMockPaymentRepository creates a new instance of MockPaymentRepository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		records: make(map[string]models.PaymentRecord),
	}
}

// Create adds a new payment record.
func (r *MockPaymentRepository) Create(record *models.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	r.records[record.ID] = *record
	return nil
}

// GetByOrderID returns the payment record attached to an order.
func (r *MockPaymentRepository) GetByOrderID(orderID string) (*models.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.OrderID == orderID {
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("payment record for order %s not found", orderID)
}

// GetByGatewayOrderID resolves the record a gateway callback refers to.
func (r *MockPaymentRepository) GetByGatewayOrderID(gatewayOrderID string) (*models.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.records {
		if rec.GatewayOrderID == gatewayOrderID {
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("payment record for gateway order %s not found", gatewayOrderID)
}

// AttachProof stores a manual-transfer reference.
func (r *MockPaymentRepository) AttachProof(orderID string, reference string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, rec := range r.records {
		if rec.OrderID != orderID {
			continue
		}
		if rec.Status == models.PaymentCaptured {
			return false, nil
		}
		rec.ProofReference = reference
		rec.Status = models.PaymentProofSubmitted
		rec.UpdatedAt = time.Now()
		r.records[id] = rec
		return true, nil
	}
	return false, fmt.Errorf("payment record for order %s not found", orderID)
}

// MarkCaptured moves the record to captured exactly once.
func (r *MockPaymentRepository) MarkCaptured(id string, gatewayPaymentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return false, fmt.Errorf("payment record %s not found", id)
	}
	if rec.Status == models.PaymentCaptured {
		return false, nil
	}
	rec.Status = models.PaymentCaptured
	rec.GatewayPaymentID = gatewayPaymentID
	rec.UpdatedAt = time.Now()
	r.records[id] = rec
	return true, nil
}
