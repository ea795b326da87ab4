package repositories

import (
	"fmt"
	"sort"
	"sync"
	"time"
	"vastra/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders      map[string]models.Order
	checkpoints map[string][]models.OrderCheckpoint
	mu          sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:      make(map[string]models.Order),
		checkpoints: make(map[string][]models.OrderCheckpoint),
	}
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// Delete removes an order.
func (r *MockOrderRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order with ID %s not found for deletion", id)
	}
	delete(r.orders, id)
	delete(r.checkpoints, id)
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found", id)
	}
	return &order, nil
}

// GetByCustomer returns all orders of one customer, most recent first.
func (r *MockOrderRepository) GetByCustomer(customerID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, order := range r.orders {
		if order.CustomerID == customerID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// UpdateStatusIf applies a guarded status transition.
func (r *MockOrderRepository) UpdateStatusIf(id string, from []models.OrderStatus, to models.OrderStatus, extra map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return false, fmt.Errorf("order with ID %s not found for status update", id)
	}
	if !statusIn(order.Status, from) {
		return false, nil
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	for k, v := range extra {
		applyOrderColumn(&order, k, v)
	}
	r.orders[id] = order
	return true, nil
}

// UpdateReturnIf mutates the return sub-record under its preconditions.
func (r *MockOrderRepository) UpdateReturnIf(id string, orderStatus models.OrderStatus, from []models.ReturnStatus, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return false, fmt.Errorf("order with ID %s not found for return update", id)
	}
	if order.Status != orderStatus {
		return false, nil
	}
	match := false
	for _, s := range from {
		if order.Return.Status == s {
			match = true
			break
		}
	}
	if !match {
		return false, nil
	}
	order.UpdatedAt = time.Now()
	for k, v := range updates {
		applyOrderColumn(&order, k, v)
	}
	r.orders[id] = order
	return true, nil
}

// AppendCheckpoint records one timeline entry.
func (r *MockOrderRepository) AppendCheckpoint(checkpoint *models.OrderCheckpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if checkpoint.ID == "" {
		checkpoint.ID = uuid.New().String()
	}
	if checkpoint.At.IsZero() {
		checkpoint.At = time.Now()
	}
	r.checkpoints[checkpoint.OrderID] = append(r.checkpoints[checkpoint.OrderID], *checkpoint)
	return nil
}

// GetCheckpoints returns the timeline of an order.
func (r *MockOrderRepository) GetCheckpoints(orderID string) ([]models.OrderCheckpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cps := make([]models.OrderCheckpoint, len(r.checkpoints[orderID]))
	copy(cps, r.checkpoints[orderID])
	return cps, nil
}

func statusIn(status models.OrderStatus, set []models.OrderStatus) bool {
	for _, s := range set {
		if status == s {
			return true
		}
	}
	return false
}

// applyOrderColumn mirrors the column-name updates the GORM implementation
// receives, so services can use the same update maps against both.
func applyOrderColumn(order *models.Order, column string, value interface{}) {
	switch column {
	case "status":
		order.Status = value.(models.OrderStatus)
	case "tracking_id":
		order.TrackingID = value.(string)
	case "cancel_reason":
		order.CancelReason = value.(string)
	case "delivered_at":
		t := value.(time.Time)
		order.DeliveredAt = &t
	case "return_status":
		order.Return.Status = value.(models.ReturnStatus)
	case "return_reason":
		order.Return.Reason = value.(string)
	case "return_method":
		order.Return.Method = value.(models.RefundMethod)
	case "return_upi_id":
		order.Return.UPIID = value.(string)
	case "return_photo_url":
		order.Return.PhotoURL = value.(string)
	case "return_requested_at":
		t := value.(time.Time)
		order.Return.RequestedAt = &t
	case "return_bank_holder_name":
		order.Return.Bank.HolderName = value.(string)
	case "return_bank_bank_name":
		order.Return.Bank.BankName = value.(string)
	case "return_bank_account_number":
		order.Return.Bank.AccountNumber = value.(string)
	case "return_bank_ifsc":
		order.Return.Bank.IFSC = value.(string)
	}
}
