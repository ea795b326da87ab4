package repositories

import (
	"fmt"
	"vastra/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMInventoryRepository is a GORM implementation of InventoryRepository.
type GORMInventoryRepository struct {
	db *gorm.DB
}

// NewGORMInventoryRepository creates a new instance of GORMInventoryRepository.
func NewGORMInventoryRepository(db *gorm.DB) *GORMInventoryRepository {
	return &GORMInventoryRepository{
		db: db,
	}
}

// FindByProduct retrieves all inventory counters of a product.
func (r *GORMInventoryRepository) FindByProduct(productID string) ([]models.InventoryRecord, error) {
	var records []models.InventoryRecord
	if err := r.db.Find(&records, "product_id = ?", productID).Error; err != nil {
		return nil, fmt.Errorf("failed to load inventory for product %s: %w", productID, err)
	}
	return records, nil
}

// GetRecord retrieves a single counter by its ID.
func (r *GORMInventoryRepository) GetRecord(recordID string) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	if err := r.db.First(&record, "id = ?", recordID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("inventory record %s not found", recordID)
		}
		return nil, fmt.Errorf("failed to get inventory record %s: %w", recordID, err)
	}
	return &record, nil
}

// DecrementStock performs a single-statement compare-and-decrement. The
// WHERE clause guards against going negative, so two requests racing for
// the last unit resolve at the database: one row update wins, the other
// sees zero rows affected.
func (r *GORMInventoryRepository) DecrementStock(recordID string, qty int) (bool, error) {
	res := r.db.Model(&models.InventoryRecord{}).
		Where("id = ? AND stock >= ?", recordID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, fmt.Errorf("failed to decrement stock for record %s: %w", recordID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// IncrementStock restores quantity to a counter (compensation or return).
func (r *GORMInventoryRepository) IncrementStock(recordID string, qty int) error {
	res := r.db.Model(&models.InventoryRecord{}).
		Where("id = ?", recordID).
		Update("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to increment stock for record %s: %w", recordID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("inventory record %s not found for restore", recordID)
	}
	return nil
}

// Create inserts a new inventory counter.
func (r *GORMInventoryRepository) Create(record *models.InventoryRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create inventory record: %w", err)
	}
	return nil
}
