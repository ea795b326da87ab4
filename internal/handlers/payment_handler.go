package handlers

import (
	"vastra/internal/payments"
	"vastra/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles HTTP requests for the payment flows.
type PaymentHandler struct {
	orderService *services.OrderService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(orderService *services.OrderService) *PaymentHandler {
	return &PaymentHandler{
		orderService: orderService,
	}
}

// RegisterRoutes registers the authenticated payment routes.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	paymentRoutes := router.Group("/payments")
	paymentRoutes.Post("/intent", h.HandlePaymentIntent)
	paymentRoutes.Post("/manual-proof", h.HandleManualProof)
}

// RegisterCallbackRoutes registers the gateway callback, which arrives
// unauthenticated; the signature check is its authentication.
func (h *PaymentHandler) RegisterCallbackRoutes(router fiber.Router) {
	router.Post("/payments/confirm", h.HandleConfirm)
}

// HandlePaymentIntent re-fetches the gateway handle for an order still
// awaiting payment, so an abandoned checkout can resume without a second
// remote order.
func (h *PaymentHandler) HandlePaymentIntent(c *fiber.Ctx) error {
	customerID, _ := callerIdentity(c)

	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	handle, err := h.orderService.GetPaymentIntent(req.OrderID, customerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(handle)
}

// HandleConfirm finalizes a gateway payment from its signed callback.
// Duplicated callbacks answer 200 without re-applying anything.
func (h *PaymentHandler) HandleConfirm(c *fiber.Ctx) error {
	var proof payments.Proof
	if err := c.BodyParser(&proof); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid callback payload",
			"error":   err.Error(),
		})
	}

	order, err := h.orderService.ConfirmGatewayPayment(c.Context(), proof)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// HandleManualProof stores a manual-transfer transaction reference for
// later admin verification.
func (h *PaymentHandler) HandleManualProof(c *fiber.Ctx) error {
	customerID, _ := callerIdentity(c)

	var req struct {
		OrderID   string `json:"order_id"`
		Reference string `json:"reference"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.orderService.SubmitManualProof(c.Context(), req.OrderID, customerID, req.Reference); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Proof submitted, awaiting verification",
	})
}
