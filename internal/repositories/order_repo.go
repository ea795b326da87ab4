package repositories

import (
	"vastra/internal/models"
)

// OrderRepository defines the interface for order data access. Status and
// return-state updates take the current state as a precondition so that
// concurrent transitions (an admin marking shipped while the customer
// cancels) cannot both win.
type OrderRepository interface {
	Create(order *models.Order) error
	Delete(id string) error
	GetByID(id string) (*models.Order, error)
	GetByCustomer(customerID string) ([]models.Order, error)

	// UpdateStatusIf moves the order to the target status only while its
	// current status is one of the allowed set, applying extra column
	// updates in the same write. Reports false when the precondition no
	// longer holds.
	UpdateStatusIf(id string, from []models.OrderStatus, to models.OrderStatus, extra map[string]interface{}) (bool, error)

	// UpdateReturnIf mutates the embedded return sub-record only while the
	// current return status is one of the allowed set and the order status
	// matches. Reports false when the precondition no longer holds.
	UpdateReturnIf(id string, orderStatus models.OrderStatus, from []models.ReturnStatus, updates map[string]interface{}) (bool, error)

	AppendCheckpoint(checkpoint *models.OrderCheckpoint) error
	GetCheckpoints(orderID string) ([]models.OrderCheckpoint, error)
}
