package handlers

import (
	"errors"

	"vastra/internal/payments"
	"vastra/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError translates core errors into HTTP responses. Every rejection
// names the precondition that failed; the client's retry affordances depend
// on the specific reason.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"field":   validationErr.Field,
			"error":   validationErr.Error(),
		})
	}

	var stockErr *services.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":    "Insufficient stock",
			"error":      stockErr.Error(),
			"line_index": stockErr.LineIndex,
			"available":  stockErr.Available,
		})
	}

	var transitionErr *services.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Invalid order state transition",
			"error":   transitionErr.Error(),
		})
	}

	switch {
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, payments.ErrProofRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrInvalidCoupon),
		errors.Is(err, services.ErrCouponExpired),
		errors.Is(err, services.ErrCouponAlreadyUsed):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Coupon rejected",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrOrderNotFound), errors.Is(err, services.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Not your order",
		})
	case errors.Is(err, services.ErrPaymentVerificationFailed):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Payment verification failed",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrReturnAlreadyPending),
		errors.Is(err, services.ErrNotEligibleForReturn):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Return request rejected",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal error",
		"error":   err.Error(),
	})
}

// callerIdentity pulls the verified identity the auth middleware stored.
func callerIdentity(c *fiber.Ctx) (customerID string, isAdmin bool) {
	customerID, _ = c.Locals("customer_id").(string)
	isAdmin, _ = c.Locals("is_admin").(bool)
	return customerID, isAdmin
}
