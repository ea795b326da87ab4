package repositories

import (
	"fmt"
	"sync"
	"vastra/internal/models"

	"github.com/google/uuid"
)

// MockInventoryRepository is an in-memory implementation of
// InventoryRepository. The mutex gives DecrementStock the same
// compare-and-decrement atomicity the SQL implementation gets from its
// guarded UPDATE.
type MockInventoryRepository struct {
	records map[string]models.InventoryRecord
	mu      sync.Mutex
}

// NewMockInventoryRepository creates a new instance of MockInventoryRepository.
func NewMockInventoryRepository() *MockInventoryRepository {
	return &MockInventoryRepository{
		records: make(map[string]models.InventoryRecord),
	}
}

// FindByProduct returns all counters of a product.
func (r *MockInventoryRepository) FindByProduct(productID string) ([]models.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []models.InventoryRecord
	for _, rec := range r.records {
		if rec.ProductID == productID {
			records = append(records, rec)
		}
	}
	return records, nil
}

// GetRecord returns a counter by its ID.
func (r *MockInventoryRepository) GetRecord(recordID string) (*models.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[recordID]
	if !ok {
		return nil, fmt.Errorf("inventory record %s not found", recordID)
	}
	return &rec, nil
}

// DecrementStock atomically decrements the counter if enough stock remains.
func (r *MockInventoryRepository) DecrementStock(recordID string, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[recordID]
	if !ok {
		return false, fmt.Errorf("inventory record %s not found", recordID)
	}
	if rec.Stock < qty {
		return false, nil
	}
	rec.Stock -= qty
	r.records[recordID] = rec
	return true, nil
}

// IncrementStock restores quantity to a counter.
func (r *MockInventoryRepository) IncrementStock(recordID string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[recordID]
	if !ok {
		return fmt.Errorf("inventory record %s not found for restore", recordID)
	}
	rec.Stock += qty
	r.records[recordID] = rec
	return nil
}

// Create adds a new counter.
func (r *MockInventoryRepository) Create(record *models.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	r.records[record.ID] = *record
	return nil
}
