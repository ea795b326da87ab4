package models

import "time"

// PaymentRecordStatus tracks the lifecycle of a payment attempt.
type PaymentRecordStatus string

const (
	PaymentInitiated      PaymentRecordStatus = "initiated"
	PaymentProofSubmitted PaymentRecordStatus = "proof_submitted"
	PaymentCaptured       PaymentRecordStatus = "captured"
)

// PaymentRecord tracks a manual-transfer or gateway payment attempt for an
// order. For gateway payments the remote order id is the reference the
// signed callback is verified against, and the unique gateway payment id
// makes capture idempotent: a record moves to captured exactly once.
type PaymentRecord struct {
	ID               string              `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID          string              `json:"order_id" gorm:"index;type:varchar(36)"`
	Method           PaymentMethod       `json:"method" gorm:"type:varchar(10)"`
	Amount           float64             `json:"amount"`
	Currency         string              `json:"currency" gorm:"type:varchar(3)"`
	GatewayOrderID   string              `json:"gateway_order_id,omitempty" gorm:"index;type:varchar(100)"`
	GatewayPaymentID string              `json:"gateway_payment_id,omitempty" gorm:"type:varchar(100)"`
	ProofReference   string              `json:"proof_reference,omitempty"`
	Status           PaymentRecordStatus `json:"status" gorm:"type:varchar(20)"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}
