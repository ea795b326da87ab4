package payments

import (
	"context"

	"vastra/internal/models"
)

// CODAdapter implements cash-on-delivery. There is nothing to initiate and
// nothing to verify: the order goes straight to pending and payment is
// collected at the door.
type CODAdapter struct{}

// NewCODAdapter creates a new CODAdapter.
func NewCODAdapter() *CODAdapter {
	return &CODAdapter{}
}

func (a *CODAdapter) Method() models.PaymentMethod {
	return models.MethodCOD
}

func (a *CODAdapter) Initiate(ctx context.Context, order *models.Order) (*Handle, error) {
	return &Handle{
		Method:        models.MethodCOD,
		InitialStatus: models.StatusPending,
		Amount:        order.Total,
		Currency:      "INR",
	}, nil
}

func (a *CODAdapter) Confirm(ctx context.Context, record *models.PaymentRecord, proof Proof) (*Confirmation, error) {
	return &Confirmation{Note: "cash on delivery, collected at delivery"}, nil
}
