package services

import (
	"regexp"
	"strings"
	"time"

	"vastra/internal/logger"
	"vastra/internal/models"
	"vastra/internal/repositories"
	"vastra/pkg/rabbitmq"

	"go.uber.org/zap"
)

// ReturnWindow is how long after delivery a return may be requested.
const ReturnWindow = 7 * 24 * time.Hour

var upiPattern = regexp.MustCompile(`^[\w.\-]{2,}@[A-Za-z]{2,}$`)

// ReturnService is the return/refund workflow. It is the sole writer of the
// return sub-record embedded in delivered orders, and of the compensating
// stock restoration on approval.
type ReturnService struct {
	orderRepo    repositories.OrderRepository
	inventorySvc *InventoryService
	mqClient     *rabbitmq.Client
	now          func() time.Time
}

// NewReturnService creates a new ReturnService.
func NewReturnService(orderRepo repositories.OrderRepository, inventorySvc *InventoryService, mqClient *rabbitmq.Client) *ReturnService {
	return &ReturnService{
		orderRepo:    orderRepo,
		inventorySvc: inventorySvc,
		mqClient:     mqClient,
		now:          time.Now,
	}
}

// ReturnInput carries the customer's return request.
type ReturnInput struct {
	Reason   string
	Method   models.RefundMethod
	UPIID    string
	Bank     models.BankAccount
	PhotoURL string
}

// RequestReturn files a return for a delivered order. Eligibility: the
// order is delivered, within the return window, and has no pending or
// approved return. The refund destination must be structurally complete
// for the chosen method before any state is written.
func (s *ReturnService) RequestReturn(orderID, customerID string, input ReturnInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if order.Status != models.StatusDelivered || order.DeliveredAt == nil {
		return nil, ErrNotEligibleForReturn
	}
	if s.now().Sub(*order.DeliveredAt) > ReturnWindow {
		return nil, ErrReturnWindowExpired
	}
	switch order.Return.Status {
	case models.ReturnPending:
		return nil, ErrReturnAlreadyPending
	case models.ReturnApproved:
		// Approved returns are immutable; no re-request.
		return nil, ErrNotEligibleForReturn
	}

	if err := validateReturnInput(input); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"return_status":       models.ReturnPending,
		"return_reason":       input.Reason,
		"return_method":       input.Method,
		"return_upi_id":       input.UPIID,
		"return_photo_url":    input.PhotoURL,
		"return_requested_at": s.now(),
	}
	if input.Method == models.RefundBank {
		updates["return_bank_holder_name"] = input.Bank.HolderName
		updates["return_bank_bank_name"] = input.Bank.BankName
		updates["return_bank_account_number"] = input.Bank.AccountNumber
		updates["return_bank_ifsc"] = input.Bank.IFSC
	}

	ok, err := s.orderRepo.UpdateReturnIf(orderID, models.StatusDelivered,
		[]models.ReturnStatus{models.ReturnNone, models.ReturnRejected}, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent request got there first.
		return nil, ErrReturnAlreadyPending
	}

	return s.orderRepo.GetByID(orderID)
}

// Decide is the admin decision on a pending return. Approval moves the
// order to its terminal returned state, restores inventory and triggers the
// refund-issuance notification; a second approval call is a no-op, never a
// duplicate refund. A rejected order may file a new request.
func (s *ReturnService) Decide(orderID string, decision models.ReturnStatus) (*models.Order, error) {
	if decision != models.ReturnApproved && decision != models.ReturnRejected {
		return nil, &ValidationError{Field: "decision", Message: "decision must be approved or rejected"}
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	if decision == models.ReturnApproved {
		ok, err := s.orderRepo.UpdateReturnIf(orderID, models.StatusDelivered,
			[]models.ReturnStatus{models.ReturnPending},
			map[string]interface{}{
				"return_status": models.ReturnApproved,
				"status":        models.StatusReturned,
			})
		if err != nil {
			return nil, err
		}
		if !ok {
			current, gerr := s.orderRepo.GetByID(orderID)
			if gerr == nil && current.Return.Status == models.ReturnApproved {
				// Already approved: idempotent no-op.
				return current, nil
			}
			return nil, ErrNotEligibleForReturn
		}

		if err := s.inventorySvc.Restore(order.Items); err != nil {
			logger.L().Error("failed to restore stock for approved return",
				zap.String("order_id", orderID), zap.Error(err))
		}
		if err := s.orderRepo.AppendCheckpoint(&models.OrderCheckpoint{
			OrderID: orderID,
			Status:  models.StatusReturned,
			Note:    "return approved",
			At:      s.now(),
		}); err != nil {
			logger.L().Warn("failed to append return checkpoint",
				zap.String("order_id", orderID), zap.Error(err))
		}
		s.publishRefund(orderID, order)
		return s.orderRepo.GetByID(orderID)
	}

	ok, err := s.orderRepo.UpdateReturnIf(orderID, models.StatusDelivered,
		[]models.ReturnStatus{models.ReturnPending},
		map[string]interface{}{"return_status": models.ReturnRejected})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotEligibleForReturn
	}
	return s.orderRepo.GetByID(orderID)
}

func (s *ReturnService) publishRefund(orderID string, order *models.Order) {
	if s.mqClient == nil {
		return
	}
	err := s.mqClient.PublishEvent(rabbitmq.EventReturnApproved, map[string]interface{}{
		"order_id":      orderID,
		"customer_id":   order.CustomerID,
		"refund_method": order.Return.Method,
		"amount":        order.Total,
	})
	if err != nil {
		logger.L().Warn("failed to publish refund notification",
			zap.String("order_id", orderID), zap.Error(err))
	}
}

// validateReturnInput checks the request field by field so the rejection
// can name the exact missing piece.
func validateReturnInput(input ReturnInput) error {
	if strings.TrimSpace(input.Reason) == "" {
		return &ValidationError{Field: "reason", Message: "a return reason is required"}
	}
	switch input.Method {
	case models.RefundUPI:
		if !upiPattern.MatchString(input.UPIID) {
			return &ValidationError{Field: "upi_id", Message: "a valid UPI id is required"}
		}
	case models.RefundBank:
		if strings.TrimSpace(input.Bank.HolderName) == "" {
			return &ValidationError{Field: "bank.holder_name", Message: "account holder name is required"}
		}
		if strings.TrimSpace(input.Bank.BankName) == "" {
			return &ValidationError{Field: "bank.bank_name", Message: "bank name is required"}
		}
		if strings.TrimSpace(input.Bank.AccountNumber) == "" {
			return &ValidationError{Field: "bank.account_number", Message: "account number is required"}
		}
		if strings.TrimSpace(input.Bank.IFSC) == "" {
			return &ValidationError{Field: "bank.ifsc", Message: "IFSC code is required"}
		}
	default:
		return &ValidationError{Field: "refund_method", Message: "refund method must be bank or upi"}
	}
	return nil
}
