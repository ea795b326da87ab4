package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vastra/internal/logger"
	"vastra/internal/models"
	"vastra/internal/payments"
	"vastra/internal/repositories"
	"vastra/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService is the order engine: it validates the cart, reserves
// inventory, computes totals, persists the order and drives the state
// machine. It is the sole writer of orders and of inventory decrements at
// creation time.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	productRepo  repositories.ProductRepository
	paymentRepo  repositories.PaymentRepository
	inventorySvc *InventoryService
	couponSvc    *CouponService
	adapters     payments.Registry
	mqClient     *rabbitmq.Client
	validate     *validator.Validate
	shippingFee  float64
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	paymentRepo repositories.PaymentRepository,
	inventorySvc *InventoryService,
	couponSvc *CouponService,
	adapters payments.Registry,
	mqClient *rabbitmq.Client,
	shippingFee float64,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		paymentRepo:  paymentRepo,
		inventorySvc: inventorySvc,
		couponSvc:    couponSvc,
		adapters:     adapters,
		mqClient:     mqClient,
		validate:     validator.New(),
		shippingFee:  shippingFee,
	}
}

// CreateOrderInput is the request-scoped input of CreateOrder. The caller
// identity arrives as a plain argument; there is no ambient session state
// inside the engine.
type CreateOrderInput struct {
	CustomerID    string                 `validate:"required"`
	Items         []models.OrderLineItem `validate:"required,dive"`
	Address       models.ShippingAddress `validate:"required"`
	PaymentMethod models.PaymentMethod   `validate:"required,oneof=cod manual gateway"`
	CouponCode    string
}

// CreateOrder runs the whole creation pipeline. Inventory is reserved
// before persistence; any failure after the reservation releases it before
// the error reaches the caller, so the customer never sees a half-created
// order and no stock is lost.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, *payments.Handle, error) {
	log := logger.L().With(
		zap.String("customer_id", input.CustomerID),
		zap.String("payment_method", string(input.PaymentMethod)),
		zap.Int("item_count", len(input.Items)),
	)

	if len(input.Items) == 0 {
		return nil, nil, ErrEmptyCart
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, nil, asValidationError(err)
	}

	adapter, err := s.adapters.Get(input.PaymentMethod)
	if err != nil {
		return nil, nil, &ValidationError{Field: "payment_method", Message: err.Error()}
	}

	// Coupon failures surface their specific reason; the discount is never
	// silently dropped.
	var coupon *models.Coupon
	if input.CouponCode != "" {
		coupon, err = s.couponSvc.Validate(input.CouponCode, input.CustomerID)
		if err != nil {
			return nil, nil, err
		}
	}

	// Snapshot catalog prices into the line items. Later catalog changes
	// must never touch an existing order.
	items := make([]models.OrderLineItem, len(input.Items))
	copy(items, input.Items)
	for i := range items {
		product, perr := s.productRepo.GetByID(items[i].ProductID)
		if perr != nil {
			return nil, nil, &ValidationError{
				Field:   "items",
				Message: fmt.Sprintf("product %s not found", items[i].ProductID),
			}
		}
		items[i].UnitPrice = product.Price
	}

	reservation, err := s.inventorySvc.TryReserve(items)
	if err != nil {
		return nil, nil, err
	}

	var subtotal float64
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	var discount float64
	if coupon != nil {
		discount = DiscountAmount(subtotal, coupon.DiscountPercent)
	}
	total := subtotal - discount + s.shippingFee
	if total < 0 {
		total = 0
	}

	order := &models.Order{
		ID:             uuid.New().String(),
		CustomerID:     input.CustomerID,
		Items:          items,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Shipping:       s.shippingFee,
		Total:          total,
		CouponCode:     input.CouponCode,
		PaymentMethod:  input.PaymentMethod,
		Status:         initialStatus(input.PaymentMethod),
		Address:        input.Address,
		Return:         models.ReturnRequest{Status: models.ReturnNone},
	}

	if err := s.orderRepo.Create(order); err != nil {
		s.compensate(reservation, "")
		return nil, nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	handle, err := adapter.Initiate(ctx, order)
	if err != nil {
		s.compensate(reservation, order.ID)
		return nil, nil, fmt.Errorf("payment initiation failed: %w", err)
	}

	if input.PaymentMethod != models.MethodCOD {
		record := &models.PaymentRecord{
			OrderID:        order.ID,
			Method:         input.PaymentMethod,
			Amount:         order.Total,
			Currency:       handle.Currency,
			GatewayOrderID: handle.GatewayOrderID,
			Status:         models.PaymentInitiated,
		}
		if err := s.paymentRepo.Create(record); err != nil {
			s.compensate(reservation, order.ID)
			return nil, nil, fmt.Errorf("failed to save payment record: %w", err)
		}
	}

	s.appendCheckpoint(order.ID, order.Status, "order placed")

	// Best-effort from here on: a failed coupon marking or notification
	// never rolls back an otherwise-successful order.
	if coupon != nil {
		if err := s.couponSvc.MarkApplied(input.CouponCode, input.CustomerID); err != nil {
			log.Warn("failed to mark coupon applied", zap.String("code", input.CouponCode), zap.Error(err))
		}
	}
	s.publish(rabbitmq.EventOrderCreated, map[string]interface{}{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"status":      order.Status,
		"total":       order.Total,
	})

	log.Info("order created",
		zap.String("order_id", order.ID),
		zap.Float64("total", order.Total),
		zap.String("status", string(order.Status)),
	)
	return order, handle, nil
}

// compensate releases reserved stock and removes the half-created order, if
// any, after a pipeline failure.
func (s *OrderService) compensate(reservation *Reservation, orderID string) {
	if err := s.inventorySvc.Release(reservation); err != nil {
		logger.L().Error("failed to release reservation during compensation", zap.Error(err))
	}
	if orderID != "" {
		if err := s.orderRepo.Delete(orderID); err != nil {
			logger.L().Error("failed to delete order during compensation",
				zap.String("order_id", orderID), zap.Error(err))
		}
	}
}

// GetOrder returns an order, enforcing ownership unless the caller is an
// admin.
func (s *OrderService) GetOrder(orderID, customerID string, isAdmin bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if !isAdmin && order.CustomerID != customerID {
		return nil, ErrForbidden
	}
	return order, nil
}

// GetCustomerOrders returns all orders of the calling customer.
func (s *OrderService) GetCustomerOrders(customerID string) ([]models.Order, error) {
	return s.orderRepo.GetByCustomer(customerID)
}

// Cancel is the customer-initiated cancellation. It is allowed only while
// the order has not shipped, requires a reason, and restores the reserved
// stock.
func (s *OrderService) Cancel(orderID, customerID, reason string) (*models.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Field: "reason", Message: "a cancellation reason is required"}
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.CustomerID != customerID {
		return nil, ErrForbidden
	}

	ok, err := s.orderRepo.UpdateStatusIf(orderID,
		[]models.OrderStatus{
			models.StatusPending,
			models.StatusPendingPayment,
			models.StatusPendingVerification,
			models.StatusPaid,
		},
		models.StatusCancelled,
		map[string]interface{}{"cancel_reason": reason},
	)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, _ := s.orderRepo.GetByID(orderID)
		from := order.Status
		if current != nil {
			from = current.Status
		}
		return nil, &InvalidTransitionError{From: from, To: models.StatusCancelled}
	}

	if err := s.inventorySvc.Restore(order.Items); err != nil {
		logger.L().Error("failed to restore stock after cancellation",
			zap.String("order_id", orderID), zap.Error(err))
	}
	s.appendCheckpoint(orderID, models.StatusCancelled, reason)
	s.publish(rabbitmq.EventOrderCancelled, map[string]interface{}{
		"order_id":    orderID,
		"customer_id": customerID,
		"reason":      reason,
	})

	return s.orderRepo.GetByID(orderID)
}

// AdminUpdateStatus drives the admin-only transitions: confirming a manual
// payment, shipping (tracking id required) and delivery. The current status
// is a write precondition, so a racing customer cancellation cannot be
// overwritten.
func (s *OrderService) AdminUpdateStatus(orderID string, target models.OrderStatus, trackingID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	var from []models.OrderStatus
	extra := map[string]interface{}{}
	note := ""

	switch target {
	case models.StatusPaid:
		from = []models.OrderStatus{models.StatusPendingVerification}
		note = "payment verified by admin"
	case models.StatusShipped:
		if strings.TrimSpace(trackingID) == "" {
			return nil, &ValidationError{Field: "tracking_id", Message: "tracking id is required when marking shipped"}
		}
		from = []models.OrderStatus{models.StatusPaid, models.StatusPending}
		extra["tracking_id"] = trackingID
		note = "shipped with tracking id " + trackingID
	case models.StatusDelivered:
		from = []models.OrderStatus{models.StatusShipped}
		extra["delivered_at"] = time.Now()
		note = "delivered"
	default:
		return nil, &InvalidTransitionError{From: order.Status, To: target}
	}

	ok, err := s.orderRepo.UpdateStatusIf(orderID, from, target, extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, _ := s.orderRepo.GetByID(orderID)
		fromStatus := order.Status
		if current != nil {
			fromStatus = current.Status
		}
		return nil, &InvalidTransitionError{From: fromStatus, To: target}
	}

	s.appendCheckpoint(orderID, target, note)

	switch target {
	case models.StatusPaid:
		// A manually verified transfer also settles its payment record.
		if record, rerr := s.paymentRepo.GetByOrderID(orderID); rerr == nil {
			if _, merr := s.paymentRepo.MarkCaptured(record.ID, record.ProofReference); merr != nil {
				logger.L().Warn("failed to settle manual payment record",
					zap.String("order_id", orderID), zap.Error(merr))
			}
		}
		s.publish(rabbitmq.EventPaymentCaptured, map[string]interface{}{"order_id": orderID})
	case models.StatusShipped:
		s.publish(rabbitmq.EventOrderShipped, map[string]interface{}{
			"order_id":    orderID,
			"tracking_id": trackingID,
		})
	}

	return s.orderRepo.GetByID(orderID)
}

// ConfirmGatewayPayment finalizes a gateway order from a signed callback.
// The signature is verified against the stored remote order id, and the
// payment record's captured-once gate makes a duplicated callback a no-op:
// it never re-transitions the order or touches inventory again.
func (s *OrderService) ConfirmGatewayPayment(ctx context.Context, proof payments.Proof) (*models.Order, error) {
	record, err := s.paymentRepo.GetByGatewayOrderID(proof.GatewayOrderID)
	if err != nil {
		return nil, ErrPaymentVerificationFailed
	}

	adapter, err := s.adapters.Get(models.MethodGateway)
	if err != nil {
		return nil, err
	}
	confirmation, err := adapter.Confirm(ctx, record, proof)
	if err != nil {
		// The order stays in its pre-confirmation state; the customer may
		// retry without re-reserving inventory.
		return nil, fmt.Errorf("%w: %v", ErrPaymentVerificationFailed, err)
	}

	captured, err := s.paymentRepo.MarkCaptured(record.ID, confirmation.PaymentID)
	if err != nil {
		return nil, err
	}
	if !captured {
		logger.L().Info("duplicate gateway callback ignored",
			zap.String("gateway_order_id", proof.GatewayOrderID),
			zap.String("gateway_payment_id", proof.GatewayPaymentID),
		)
		order, gerr := s.orderRepo.GetByID(record.OrderID)
		if gerr != nil {
			return nil, ErrOrderNotFound
		}
		return order, nil
	}

	ok, err := s.orderRepo.UpdateStatusIf(record.OrderID,
		[]models.OrderStatus{models.StatusPendingPayment},
		models.StatusPaid, nil)
	if err != nil {
		return nil, err
	}
	if ok {
		s.appendCheckpoint(record.OrderID, models.StatusPaid, "payment captured")
		s.publish(rabbitmq.EventPaymentCaptured, map[string]interface{}{
			"order_id":           record.OrderID,
			"gateway_payment_id": confirmation.PaymentID,
		})
	}

	return s.orderRepo.GetByID(record.OrderID)
}

// GetPaymentIntent returns the existing gateway handle for an order that is
// still awaiting payment, so an abandoned checkout can be retried without
// creating a second remote order or re-reserving stock.
func (s *OrderService) GetPaymentIntent(orderID, customerID string) (*payments.Handle, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if order.Status != models.StatusPendingPayment {
		return nil, &InvalidTransitionError{From: order.Status, To: models.StatusPendingPayment}
	}
	record, err := s.paymentRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, ErrPaymentVerificationFailed
	}
	handle := &payments.Handle{
		Method:         models.MethodGateway,
		InitialStatus:  models.StatusPendingPayment,
		GatewayOrderID: record.GatewayOrderID,
		Amount:         record.Amount,
		Currency:       record.Currency,
	}
	if adapter, aerr := s.adapters.Get(models.MethodGateway); aerr == nil {
		if gateway, isGateway := adapter.(*payments.GatewayAdapter); isGateway {
			handle.KeyID = gateway.KeyID()
		}
	}
	return handle, nil
}

// SubmitManualProof stores the customer's transaction reference for a
// manual-transfer order. The order stays in pending_verification until an
// admin confirms it; nothing here checks the reference against an external
// source of truth.
func (s *OrderService) SubmitManualProof(ctx context.Context, orderID, customerID, reference string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return ErrOrderNotFound
	}
	if order.CustomerID != customerID {
		return ErrForbidden
	}
	if order.Status != models.StatusPendingVerification {
		return &ValidationError{Field: "order", Message: "order is not awaiting manual verification"}
	}

	adapter, err := s.adapters.Get(models.MethodManual)
	if err != nil {
		return err
	}
	record, err := s.paymentRepo.GetByOrderID(orderID)
	if err != nil {
		return ErrPaymentVerificationFailed
	}
	if _, err := adapter.Confirm(ctx, record, payments.Proof{Reference: reference}); err != nil {
		return &ValidationError{Field: "reference", Message: err.Error()}
	}

	ok, err := s.paymentRepo.AttachProof(orderID, reference)
	if err != nil {
		return err
	}
	if !ok {
		return &ValidationError{Field: "order", Message: "payment is already settled"}
	}
	return nil
}

func (s *OrderService) appendCheckpoint(orderID string, status models.OrderStatus, note string) {
	err := s.orderRepo.AppendCheckpoint(&models.OrderCheckpoint{
		OrderID: orderID,
		Status:  status,
		Note:    note,
		At:      time.Now(),
	})
	if err != nil {
		logger.L().Warn("failed to append order checkpoint",
			zap.String("order_id", orderID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

// publish sends a notification event without letting a broker failure leak
// into the order flow.
func (s *OrderService) publish(event string, data map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishEvent(event, data); err != nil {
		logger.L().Warn("failed to publish notification event",
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

// initialStatus maps a payment method to the state its orders start in.
func initialStatus(method models.PaymentMethod) models.OrderStatus {
	switch method {
	case models.MethodManual:
		return models.StatusPendingVerification
	case models.MethodGateway:
		return models.StatusPendingPayment
	default:
		return models.StatusPending
	}
}

// asValidationError converts the first validator failure into the typed
// error the handlers translate for the client.
func asValidationError(err error) error {
	if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return &ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
		}
	}
	return &ValidationError{Field: "request", Message: err.Error()}
}
