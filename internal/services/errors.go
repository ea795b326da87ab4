package services

import (
	"errors"
	"fmt"

	"vastra/internal/models"
)

var (
	ErrEmptyCart                 = errors.New("cart is empty")
	ErrOrderNotFound             = errors.New("order not found")
	ErrProductNotFound           = errors.New("product not found")
	ErrForbidden                 = errors.New("order belongs to another customer")
	ErrInvalidCoupon             = errors.New("coupon is invalid or inactive")
	ErrCouponExpired             = errors.New("coupon has expired")
	ErrCouponAlreadyUsed         = errors.New("coupon already used")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrNotEligibleForReturn      = errors.New("order is not eligible for return")
	ErrReturnWindowExpired       = fmt.Errorf("%w: return window expired", ErrNotEligibleForReturn)
	ErrReturnAlreadyPending      = errors.New("a return request is already pending")
)

// ValidationError names the exact field that failed, so the client can
// point the customer at it instead of showing a generic failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// InsufficientStockError reports which cart line ran out and how many units
// are still available, so the client can re-offer the remainder.
type InsufficientStockError struct {
	LineIndex int
	ProductID string
	SizeCode  string
	ColorName string
	Available int
}

func (e *InsufficientStockError) Error() string {
	variant := ""
	if e.ColorName != "" {
		variant = fmt.Sprintf(" color %q", e.ColorName)
	} else if e.SizeCode != "" {
		variant = fmt.Sprintf(" size %q", e.SizeCode)
	}
	return fmt.Sprintf("insufficient stock for product %s%s (line %d, available: %d)",
		e.ProductID, variant, e.LineIndex, e.Available)
}

// InvalidTransitionError reports a state-machine move outside the allowed
// graph. It is always rejected, never silently coerced.
type InvalidTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition from %s to %s", e.From, e.To)
}
