package handlers

import (
	"vastra/internal/models"
	"vastra/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	orderService    *services.OrderService
	returnService   *services.ReturnService
	shipmentService *services.ShipmentService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, returnService *services.ReturnService, shipmentService *services.ShipmentService) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		returnService:   returnService,
		shipmentService: shipmentService,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/mine", h.HandleGetMyOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/tracking", h.HandleGetTracking)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Post("/:id/request-return", h.HandleRequestReturn)
}

// RegisterAdminRoutes registers the admin-only order transitions. The
// router passed in must already enforce the admin guard.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Put("/:id/admin-status", h.HandleAdminUpdateStatus)
	orderRoutes.Put("/:id/admin-return-decision", h.HandleAdminReturnDecision)
}

type createOrderRequest struct {
	Items         []models.OrderLineItem `json:"items"`
	Address       models.ShippingAddress `json:"address"`
	PaymentMethod models.PaymentMethod   `json:"payment_method"`
	CouponCode    string                 `json:"coupon_code"`
}

// HandleCreateOrder creates a new order from the submitted cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	customerID, _ := callerIdentity(c)

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, handle, err := h.orderService.CreateOrder(c.Context(), services.CreateOrderInput{
		CustomerID:    customerID,
		Items:         req.Items,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order":   order,
		"payment": handle,
	})
}

// HandleGetMyOrders lists the calling customer's orders.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	customerID, _ := callerIdentity(c)
	orders, err := h.orderService.GetCustomerOrders(customerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	customerID, isAdmin := callerIdentity(c)
	order, err := h.orderService.GetOrder(c.Params("id"), customerID, isAdmin)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleGetTracking returns the checkpoint timeline of an order.
func (h *OrderHandler) HandleGetTracking(c *fiber.Ctx) error {
	customerID, isAdmin := callerIdentity(c)
	info, err := h.shipmentService.Track(c.Params("id"), customerID, isAdmin)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(info)
}

// HandleCancelOrder cancels a not-yet-shipped order.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	customerID, _ := callerIdentity(c)

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, err := h.orderService.Cancel(c.Params("id"), customerID, req.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

type returnRequest struct {
	Reason   string              `json:"reason"`
	Method   models.RefundMethod `json:"refund_method"`
	UPIID    string              `json:"upi_id"`
	Bank     models.BankAccount  `json:"bank"`
	PhotoURL string              `json:"photo_url"`
}

// HandleRequestReturn files a return for a delivered order.
func (h *OrderHandler) HandleRequestReturn(c *fiber.Ctx) error {
	customerID, _ := callerIdentity(c)

	var req returnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, err := h.returnService.RequestReturn(c.Params("id"), customerID, services.ReturnInput{
		Reason:   req.Reason,
		Method:   req.Method,
		UPIID:    req.UPIID,
		Bank:     req.Bank,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(order)
}

// HandleAdminUpdateStatus applies an admin transition (paid, shipped,
// delivered). Marking shipped requires a tracking id in the same request.
func (h *OrderHandler) HandleAdminUpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status     models.OrderStatus `json:"status"`
		TrackingID string             `json:"tracking_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	order, err := h.orderService.AdminUpdateStatus(c.Params("id"), req.Status, req.TrackingID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleAdminReturnDecision approves or rejects a pending return.
func (h *OrderHandler) HandleAdminReturnDecision(c *fiber.Ctx) error {
	var req struct {
		Decision models.ReturnStatus `json:"decision"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	order, err := h.returnService.Decide(c.Params("id"), req.Decision)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}
