package handlers

import (
	"vastra/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CouponHandler handles HTTP requests for coupon validation and consumption.
type CouponHandler struct {
	couponService *services.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(couponService *services.CouponService) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
	}
}

// RegisterRoutes registers the coupon routes with the Fiber app.
func (h *CouponHandler) RegisterRoutes(router fiber.Router) {
	couponRoutes := router.Group("/coupons")
	couponRoutes.Post("/validate", h.HandleValidate)
	couponRoutes.Post("/apply", h.HandleApply)
}

type couponRequest struct {
	Code string `json:"code"`
}

// HandleValidate is the pure check: it reports the discount the code would
// grant without consuming it.
func (h *CouponHandler) HandleValidate(c *fiber.Ctx) error {
	customerID, _ := callerIdentity(c)

	var req couponRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A coupon code is required",
		})
	}

	coupon, err := h.couponService.Validate(req.Code, customerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"code":             coupon.Code,
		"discount_percent": coupon.DiscountPercent,
	})
}

// HandleApply marks the code consumed for this customer. Applying twice is
// a no-op, not an error.
func (h *CouponHandler) HandleApply(c *fiber.Ctx) error {
	customerID, _ := callerIdentity(c)

	var req couponRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "A coupon code is required",
		})
	}

	if err := h.couponService.MarkApplied(req.Code, customerID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Coupon marked applied",
	})
}
