package payments

import (
	"context"

	"vastra/internal/models"
)

// ManualAdapter implements out-of-band bank transfers. The customer pays
// against displayed account details and submits a free-text transaction
// reference. The reference is never verified against an external source;
// an admin moves the order to paid after checking it by hand.
type ManualAdapter struct{}

// NewManualAdapter creates a new ManualAdapter.
func NewManualAdapter() *ManualAdapter {
	return &ManualAdapter{}
}

func (a *ManualAdapter) Method() models.PaymentMethod {
	return models.MethodManual
}

func (a *ManualAdapter) Initiate(ctx context.Context, order *models.Order) (*Handle, error) {
	return &Handle{
		Method:        models.MethodManual,
		InitialStatus: models.StatusPendingVerification,
		Amount:        order.Total,
		Currency:      "INR",
	}, nil
}

func (a *ManualAdapter) Confirm(ctx context.Context, record *models.PaymentRecord, proof Proof) (*Confirmation, error) {
	if proof.Reference == "" {
		return nil, ErrProofRequired
	}
	return &Confirmation{
		PaymentID: proof.Reference,
		Note:      "awaiting admin verification",
	}, nil
}
