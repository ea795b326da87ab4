package services

import (
	"vastra/internal/models"
	"vastra/internal/repositories"
)

// ShipmentService is a read-mostly projection deriving a checkpoint
// timeline from the order's status transitions plus its optional external
// tracking identifier.
type ShipmentService struct {
	orderRepo repositories.OrderRepository
}

// NewShipmentService creates a new ShipmentService.
func NewShipmentService(orderRepo repositories.OrderRepository) *ShipmentService {
	return &ShipmentService{
		orderRepo: orderRepo,
	}
}

// TrackingInfo is what the tracking endpoint renders.
type TrackingInfo struct {
	OrderID     string                   `json:"order_id"`
	Status      models.OrderStatus       `json:"status"`
	TrackingID  string                   `json:"tracking_id,omitempty"`
	Checkpoints []models.OrderCheckpoint `json:"checkpoints"`
}

// Track assembles the shipment timeline for an order, enforcing ownership
// unless the caller is an admin.
func (s *ShipmentService) Track(orderID, customerID string, isAdmin bool) (*TrackingInfo, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if !isAdmin && order.CustomerID != customerID {
		return nil, ErrForbidden
	}
	checkpoints, err := s.orderRepo.GetCheckpoints(orderID)
	if err != nil {
		return nil, err
	}
	return &TrackingInfo{
		OrderID:     order.ID,
		Status:      order.Status,
		TrackingID:  order.TrackingID,
		Checkpoints: checkpoints,
	}, nil
}
