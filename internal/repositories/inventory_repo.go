package repositories

import (
	"vastra/internal/models"
)

// InventoryRepository is the persistence side of the inventory ledger.
// DecrementStock must be an atomic compare-and-decrement against the live
// counter: it reports false, without touching the row, when the remaining
// stock is smaller than the requested quantity.
type InventoryRepository interface {
	FindByProduct(productID string) ([]models.InventoryRecord, error)
	GetRecord(recordID string) (*models.InventoryRecord, error)
	DecrementStock(recordID string, qty int) (bool, error)
	IncrementStock(recordID string, qty int) error
	Create(record *models.InventoryRecord) error
}
