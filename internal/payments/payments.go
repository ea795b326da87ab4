// Package payments holds the payment strategies an order can be settled
// with: cash-on-delivery, manual bank transfer, and a gateway-mediated
// flow. The order engine picks one adapter at initiation time and never
// re-checks the method afterwards.
package payments

import (
	"context"
	"errors"
	"fmt"

	"vastra/internal/models"
)

var (
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	ErrProofRequired     = errors.New("transaction reference is required")
	ErrUnknownMethod     = errors.New("unknown payment method")
)

// Handle is what Initiate returns: everything the caller needs to bring
// the payment to completion, plus the status the order starts its life in.
type Handle struct {
	Method         models.PaymentMethod `json:"method"`
	InitialStatus  models.OrderStatus   `json:"-"`
	GatewayOrderID string               `json:"gateway_order_id,omitempty"`
	KeyID          string               `json:"key_id,omitempty"`
	Amount         float64              `json:"amount"`
	Currency       string               `json:"currency"`
}

// Proof carries whatever the customer (or the gateway callback) submits to
// confirm a payment.
type Proof struct {
	GatewayOrderID   string `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string `json:"gateway_payment_id,omitempty"`
	Signature        string `json:"signature,omitempty"`
	Reference        string `json:"reference,omitempty"`
}

// Confirmation is the adapter's verdict on a proof.
type Confirmation struct {
	PaymentID string
	Note      string
}

// Adapter is the strategy interface shared by all payment methods.
type Adapter interface {
	Method() models.PaymentMethod

	// Initiate prepares the payment for a freshly validated order. For the
	// gateway method this includes a remote round-trip; inventory is
	// already reserved by the time it runs, so a slow gateway cannot
	// oversell stock.
	Initiate(ctx context.Context, order *models.Order) (*Handle, error)

	// Confirm judges a submitted proof against the stored payment record.
	// It must not mutate anything; persistence of the verdict stays with
	// the order engine.
	Confirm(ctx context.Context, record *models.PaymentRecord, proof Proof) (*Confirmation, error)
}

// Registry resolves the adapter for a payment method.
type Registry map[models.PaymentMethod]Adapter

// NewRegistry builds a registry from the given adapters.
func NewRegistry(adapters ...Adapter) Registry {
	reg := make(Registry, len(adapters))
	for _, a := range adapters {
		reg[a.Method()] = a
	}
	return reg
}

// Get returns the adapter for a method.
func (r Registry) Get(method models.PaymentMethod) (Adapter, error) {
	adapter, ok := r[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
	return adapter, nil
}
