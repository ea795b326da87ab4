package repositories

import (
	"fmt"
	"time"
	"vastra/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// Create persists the order together with its line-item snapshots.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Delete removes an order and its line items. Used only as a compensating
// action when payment initiation fails after persistence; confirmed orders
// are never deleted.
func (r *GORMOrderRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.OrderLineItem{}, "order_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		if err := tx.Delete(&models.OrderCheckpoint{}, "order_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete order checkpoints: %w", err)
		}
		if err := tx.Delete(&models.Order{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete order %s: %w", id, err)
		}
		return nil
	})
}

// GetByID returns an order by its ID, including line items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetByCustomer returns all orders of one customer, most recent first.
func (r *GORMOrderRepository) GetByCustomer(customerID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for customer %s: %w", customerID, err)
	}
	return orders, nil
}

// UpdateStatusIf applies a status transition guarded by the current status.
// The precondition lives in the WHERE clause so a concurrent transition
// cannot slip in between read and write.
func (r *GORMOrderRepository) UpdateStatusIf(id string, from []models.OrderStatus, to models.OrderStatus, extra map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// UpdateReturnIf mutates the embedded return sub-record under a combined
// order-status and return-status precondition.
func (r *GORMOrderRepository) UpdateReturnIf(id string, orderStatus models.OrderStatus, from []models.ReturnStatus, updates map[string]interface{}) (bool, error) {
	all := map[string]interface{}{
		"updated_at": time.Now(),
	}
	for k, v := range updates {
		all[k] = v
	}
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ? AND return_status IN ?", id, orderStatus, from).
		Updates(all)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update return state of order %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// AppendCheckpoint records one entry of the shipment timeline.
func (r *GORMOrderRepository) AppendCheckpoint(checkpoint *models.OrderCheckpoint) error {
	if checkpoint.ID == "" {
		checkpoint.ID = uuid.New().String()
	}
	if checkpoint.At.IsZero() {
		checkpoint.At = time.Now()
	}
	if err := r.db.Create(checkpoint).Error; err != nil {
		return fmt.Errorf("failed to append checkpoint for order %s: %w", checkpoint.OrderID, err)
	}
	return nil
}

// GetCheckpoints returns the checkpoint timeline of an order in order of
// occurrence.
func (r *GORMOrderRepository) GetCheckpoints(orderID string) ([]models.OrderCheckpoint, error) {
	var checkpoints []models.OrderCheckpoint
	err := r.db.Where("order_id = ?", orderID).
		Order("at ASC").
		Find(&checkpoints).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoints for order %s: %w", orderID, err)
	}
	return checkpoints, nil
}
