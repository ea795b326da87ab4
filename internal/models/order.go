package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	// StatusPendingPayment is the transient state of a gateway order whose
	// remote payment has been initiated but not yet confirmed.
	StatusPendingPayment OrderStatus = "pending_payment"
	// StatusPending is a cash-on-delivery order awaiting delivery.
	StatusPending OrderStatus = "pending"
	// StatusPendingVerification is a manual-transfer order awaiting admin
	// confirmation of the submitted proof.
	StatusPendingVerification OrderStatus = "pending_verification"
	StatusPaid                OrderStatus = "paid"
	StatusShipped             OrderStatus = "shipped"
	StatusDelivered           OrderStatus = "delivered"
	StatusCancelled           OrderStatus = "cancelled"
	StatusReturned            OrderStatus = "returned"
)

// PaymentMethod selects the payment strategy for an order.
type PaymentMethod string

const (
	MethodCOD     PaymentMethod = "cod"
	MethodManual  PaymentMethod = "manual"
	MethodGateway PaymentMethod = "gateway"
)

// ReturnStatus is the state of the return sub-record embedded in an order.
type ReturnStatus string

const (
	ReturnNone     ReturnStatus = "none"
	ReturnPending  ReturnStatus = "pending"
	ReturnApproved ReturnStatus = "approved"
	ReturnRejected ReturnStatus = "rejected"
)

// RefundMethod is the destination type for an approved refund.
type RefundMethod string

const (
	RefundBank RefundMethod = "bank"
	RefundUPI  RefundMethod = "upi"
)

// transitions is the allowed edge set of the order state machine.
// Cancellation edges are listed explicitly; no other backward move exists.
// A COD order ships directly from pending since payment is collected at the
// door.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPendingPayment:      {StatusPaid, StatusCancelled},
	StatusPending:             {StatusShipped, StatusCancelled},
	StatusPendingVerification: {StatusPaid, StatusCancelled},
	StatusPaid:                {StatusShipped, StatusCancelled},
	StatusShipped:             {StatusDelivered},
	StatusDelivered:           {StatusReturned},
}

// CanTransition reports whether the state machine allows moving from one
// status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in the given status is still inside
// the cancellation window. The window closes once the order ships.
func Cancellable(status OrderStatus) bool {
	return CanTransition(status, StatusCancelled)
}

// OrderLineItem is a snapshot of a cart line taken at order creation.
// It references the product by id but carries its own copy of the unit
// price and chosen size/color; later catalog changes never touch it.
type OrderLineItem struct {
	ID        string  `json:"-" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string  `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string  `json:"product_id" gorm:"type:varchar(36)" validate:"required"`
	SizeCode  string  `json:"size,omitempty" gorm:"type:varchar(10)"`
	ColorName string  `json:"color,omitempty" gorm:"type:varchar(50)"`
	Quantity  int     `json:"quantity" validate:"required,gte=1"`
	UnitPrice float64 `json:"unit_price"`
}

// ShippingAddress is embedded into the order as a snapshot.
type ShippingAddress struct {
	Name    string `json:"name" validate:"required"`
	Line1   string `json:"line1" validate:"required"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required,numeric,min=4,max=8"`
	Phone   string `json:"phone" validate:"required,numeric,len=10"`
}

// BankAccount is the destination tuple for a bank refund.
type BankAccount struct {
	HolderName    string `json:"holder_name"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
}

// ReturnRequest is the return sub-record embedded in an order. Only the
// return workflow writes it.
type ReturnRequest struct {
	Reason      string       `json:"reason,omitempty"`
	Method      RefundMethod `json:"refund_method,omitempty" gorm:"type:varchar(10)"`
	UPIID       string       `json:"upi_id,omitempty"`
	Bank        BankAccount  `json:"bank,omitempty" gorm:"embedded;embeddedPrefix:bank_"`
	PhotoURL    string       `json:"photo_url,omitempty"`
	Status      ReturnStatus `json:"status" gorm:"type:varchar(10);default:none"`
	RequestedAt *time.Time   `json:"requested_at,omitempty"`
}

// OrderCheckpoint is one entry of the shipment timeline, appended whenever
// the order status changes.
type OrderCheckpoint struct {
	ID      string      `json:"-" gorm:"primaryKey;type:varchar(36)"`
	OrderID string      `json:"-" gorm:"index;type:varchar(36)"`
	Status  OrderStatus `json:"status" gorm:"type:varchar(30)"`
	Note    string      `json:"note,omitempty"`
	At      time.Time   `json:"at"`
}

// Order is the persisted order document. Line items, address and return
// sub-record are part of its durable shape; external consumers depend on it.
type Order struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID     string          `json:"customer_id" gorm:"index;type:varchar(36)"`
	Items          []OrderLineItem `json:"items" gorm:"foreignKey:OrderID"`
	Subtotal       float64         `json:"subtotal"`
	DiscountAmount float64         `json:"discount_amount"`
	Shipping       float64         `json:"shipping"`
	Total          float64         `json:"total"`
	CouponCode     string          `json:"coupon_code,omitempty" gorm:"type:varchar(50)"`
	PaymentMethod  PaymentMethod   `json:"payment_method" gorm:"type:varchar(10)"`
	Status         OrderStatus     `json:"status" gorm:"index;type:varchar(30)"`
	TrackingID     string          `json:"tracking_id,omitempty" gorm:"type:varchar(100)"`
	CancelReason   string          `json:"cancel_reason,omitempty"`
	Address        ShippingAddress `json:"address" gorm:"embedded;embeddedPrefix:addr_"`
	Return         ReturnRequest   `json:"return" gorm:"embedded;embeddedPrefix:return_"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
}
