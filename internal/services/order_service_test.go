package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vastra/internal/models"
	"vastra/internal/payments"
	"vastra/internal/repositories"
	"vastra/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShippingFee = 49.0

type orderFixture struct {
	orderRepo     *repositories.MockOrderRepository
	productRepo   *repositories.MockProductRepository
	paymentRepo   *repositories.MockPaymentRepository
	inventoryRepo *repositories.MockInventoryRepository
	couponRepo    *repositories.MockCouponRepository
	gateway       *payments.GatewayAdapter
	svc           *services.OrderService
}

// newOrderFixture wires the order engine against in-memory repositories and
// a gateway adapter pointed at the given base URL.
func newOrderFixture(gatewayURL string) *orderFixture {
	f := &orderFixture{
		orderRepo:     repositories.NewMockOrderRepository(),
		productRepo:   repositories.NewMockProductRepository(),
		paymentRepo:   repositories.NewMockPaymentRepository(),
		inventoryRepo: repositories.NewMockInventoryRepository(),
		couponRepo:    repositories.NewMockCouponRepository(),
	}
	f.gateway = payments.NewGatewayAdapter("key_test", "secret_test", gatewayURL)
	inventorySvc := services.NewInventoryService(f.inventoryRepo)
	couponSvc := services.NewCouponService(f.couponRepo)
	f.svc = services.NewOrderService(
		f.orderRepo, f.productRepo, f.paymentRepo,
		inventorySvc, couponSvc,
		payments.NewRegistry(payments.NewCODAdapter(), payments.NewManualAdapter(), f.gateway),
		nil, // notifications disabled in tests
		testShippingFee,
	)
	return f
}

func (f *orderFixture) seedProduct(t *testing.T, id string, price float64, stock int) {
	t.Helper()
	require.NoError(t, f.productRepo.Create(&models.Product{
		ID:    id,
		Name:  "Cotton Crew Tee",
		Price: price,
	}))
	require.NoError(t, f.inventoryRepo.Create(&models.InventoryRecord{
		ProductID: id,
		Stock:     stock,
	}))
}

func (f *orderFixture) stock(t *testing.T, productID string) int {
	t.Helper()
	records, err := f.inventoryRepo.FindByProduct(productID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0].Stock
}

func fakeGatewayServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "gw_order_1",
			"amount":   int64(0),
			"currency": "INR",
			"status":   "created",
		})
	}))
}

func validAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Name:    "Asha Verma",
		Line1:   "14 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
		Phone:   "9876543210",
	}
}

func TestCreateOrderCODComputesTotals(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 10)
	f.seedProduct(t, "tee-2", 999, 5)
	require.NoError(t, f.couponRepo.Create(&models.Coupon{Code: "FEST10", DiscountPercent: 10, Active: true}))

	order, handle, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID: "cust-1",
		Items: []models.OrderLineItem{
			{ProductID: "tee-1", Quantity: 2},
			{ProductID: "tee-2", Quantity: 1},
		},
		Address:       validAddress(),
		PaymentMethod: models.MethodCOD,
		CouponCode:    "FEST10",
	})
	require.NoError(t, err)
	require.NotNil(t, order)
	require.NotNil(t, handle)

	// subtotal 2*499 + 999 = 1997; 10% coupon rounds to 200.
	assert.Equal(t, 1997.0, order.Subtotal)
	assert.Equal(t, 200.0, order.DiscountAmount)
	assert.Equal(t, testShippingFee, order.Shipping)
	assert.Equal(t, 1997.0-200.0+testShippingFee, order.Total)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 499.0, order.Items[0].UnitPrice, "unit price snapshotted from catalog")

	assert.Equal(t, 8, f.stock(t, "tee-1"))
	assert.Equal(t, 4, f.stock(t, "tee-2"))

	checkpoints, err := f.orderRepo.GetCheckpoints(order.ID)
	require.NoError(t, err)
	require.Len(t, checkpoints, 1)
	assert.Equal(t, models.StatusPending, checkpoints[0].Status)

	// The coupon is consumed: a second order by the same customer fails.
	_, _, err = f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    "cust-1",
		Items:         []models.OrderLineItem{{ProductID: "tee-1", Quantity: 1}},
		Address:       validAddress(),
		PaymentMethod: models.MethodCOD,
		CouponCode:    "FEST10",
	})
	assert.ErrorIs(t, err, services.ErrCouponAlreadyUsed)
}

func TestCreateOrderRejectsEmptyCart(t *testing.T) {
	f := newOrderFixture("")
	_, _, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    "cust-1",
		Address:       validAddress(),
		PaymentMethod: models.MethodCOD,
	})
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCreateOrderRejectsBadAddress(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 10)

	addr := validAddress()
	addr.Phone = "12345" // not 10 digits

	_, _, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    "cust-1",
		Items:         []models.OrderLineItem{{ProductID: "tee-1", Quantity: 1}},
		Address:       addr,
		PaymentMethod: models.MethodCOD,
	})
	var vErr *services.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "phone", vErr.Field)
}

func TestCreateOrderInsufficientStockLeavesNothingBehind(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 1)

	_, _, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    "cust-1",
		Items:         []models.OrderLineItem{{ProductID: "tee-1", Quantity: 2}},
		Address:       validAddress(),
		PaymentMethod: models.MethodCOD,
	})
	var stockErr *services.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 1, stockErr.Available)

	orders, err := f.svc.GetCustomerOrders("cust-1")
	require.NoError(t, err)
	assert.Empty(t, orders, "no half-created order may persist")
	assert.Equal(t, 1, f.stock(t, "tee-1"))
}

func TestCreateOrderGatewayReturnsHandle(t *testing.T) {
	server := fakeGatewayServer()
	defer server.Close()

	f := newOrderFixture(server.URL)
	f.seedProduct(t, "tee-1", 499, 10)

	order, handle, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    "cust-1",
		Items:         []models.OrderLineItem{{ProductID: "tee-1", Quantity: 1}},
		Address:       validAddress(),
		PaymentMethod: models.MethodGateway,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, order.Status)
	assert.Equal(t, "gw_order_1", handle.GatewayOrderID)
	assert.Equal(t, "key_test", handle.KeyID)

	record, err := f.paymentRepo.GetByOrderID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentInitiated, record.Status)
	assert.Equal(t, "gw_order_1", record.GatewayOrderID)
}

func TestCreateOrderGatewayFailureReleasesStock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := newOrderFixture(server.URL)
	f.seedProduct(t, "tee-1", 499, 10)

	_, _, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    "cust-1",
		Items:         []models.OrderLineItem{{ProductID: "tee-1", Quantity: 3}},
		Address:       validAddress(),
		PaymentMethod: models.MethodGateway,
	})
	require.Error(t, err)

	assert.Equal(t, 10, f.stock(t, "tee-1"), "reservation released on pipeline failure")
	orders, err := f.svc.GetCustomerOrders("cust-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func createCODOrder(t *testing.T, f *orderFixture, customerID string) *models.Order {
	t.Helper()
	order, _, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    customerID,
		Items:         []models.OrderLineItem{{ProductID: "tee-1", Quantity: 2}},
		Address:       validAddress(),
		PaymentMethod: models.MethodCOD,
	})
	require.NoError(t, err)
	return order
}

func TestCancelRestoresStock(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 10)
	order := createCODOrder(t, f, "cust-1")
	require.Equal(t, 8, f.stock(t, "tee-1"))

	cancelled, err := f.svc.Cancel(order.ID, "cust-1", "ordered the wrong size")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "ordered the wrong size", cancelled.CancelReason)
	assert.Equal(t, 10, f.stock(t, "tee-1"))

	// Cancelling again is an invalid transition, and must not restore twice.
	_, err = f.svc.Cancel(order.ID, "cust-1", "changed my mind again")
	var transErr *services.InvalidTransitionError
	require.True(t, errors.As(err, &transErr))
	assert.Equal(t, models.StatusCancelled, transErr.From)
	assert.Equal(t, 10, f.stock(t, "tee-1"))
}

func TestCancelRequiresReasonAndOwnership(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 10)
	order := createCODOrder(t, f, "cust-1")

	_, err := f.svc.Cancel(order.ID, "cust-1", "   ")
	var vErr *services.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "reason", vErr.Field)

	_, err = f.svc.Cancel(order.ID, "cust-2", "not mine")
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestAdminShipRequiresTrackingID(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 10)
	order := createCODOrder(t, f, "cust-1")

	_, err := f.svc.AdminUpdateStatus(order.ID, models.StatusShipped, "")
	var vErr *services.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "tracking_id", vErr.Field)

	shipped, err := f.svc.AdminUpdateStatus(order.ID, models.StatusShipped, "AWB123456")
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, shipped.Status)
	assert.Equal(t, "AWB123456", shipped.TrackingID)

	delivered, err := f.svc.AdminUpdateStatus(order.ID, models.StatusDelivered, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)
}

func TestAdminCannotShipCancelledOrder(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 10)
	order := createCODOrder(t, f, "cust-1")

	_, err := f.svc.Cancel(order.ID, "cust-1", "changed my mind")
	require.NoError(t, err)

	// The shipped write carries a status precondition, so the
	// cancellation always wins this race.
	_, err = f.svc.AdminUpdateStatus(order.ID, models.StatusShipped, "AWB123456")
	var transErr *services.InvalidTransitionError
	require.True(t, errors.As(err, &transErr))
	assert.Equal(t, models.StatusCancelled, transErr.From)
}

func TestCustomerCannotCancelShippedOrder(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 10)
	order := createCODOrder(t, f, "cust-1")

	_, err := f.svc.AdminUpdateStatus(order.ID, models.StatusShipped, "AWB123456")
	require.NoError(t, err)

	_, err = f.svc.Cancel(order.ID, "cust-1", "too late")
	var transErr *services.InvalidTransitionError
	require.True(t, errors.As(err, &transErr))
	assert.Equal(t, models.StatusShipped, transErr.From)
}

func TestConfirmGatewayPayment(t *testing.T) {
	server := fakeGatewayServer()
	defer server.Close()

	f := newOrderFixture(server.URL)
	f.seedProduct(t, "tee-1", 499, 10)

	order, handle, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    "cust-1",
		Items:         []models.OrderLineItem{{ProductID: "tee-1", Quantity: 1}},
		Address:       validAddress(),
		PaymentMethod: models.MethodGateway,
	})
	require.NoError(t, err)

	proof := payments.Proof{
		GatewayOrderID:   handle.GatewayOrderID,
		GatewayPaymentID: "pay_001",
		Signature:        f.gateway.Sign(handle.GatewayOrderID, "pay_001"),
	}
	confirmed, err := f.svc.ConfirmGatewayPayment(context.Background(), proof)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, confirmed.Status)

	record, err := f.paymentRepo.GetByOrderID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCaptured, record.Status)
	assert.Equal(t, "pay_001", record.GatewayPaymentID)
	assert.Equal(t, 9, f.stock(t, "tee-1"), "confirmation never touches inventory")
}

func TestConfirmGatewayPaymentDuplicateCallbackIsNoOp(t *testing.T) {
	server := fakeGatewayServer()
	defer server.Close()

	f := newOrderFixture(server.URL)
	f.seedProduct(t, "tee-1", 499, 10)

	_, handle, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    "cust-1",
		Items:         []models.OrderLineItem{{ProductID: "tee-1", Quantity: 1}},
		Address:       validAddress(),
		PaymentMethod: models.MethodGateway,
	})
	require.NoError(t, err)

	proof := payments.Proof{
		GatewayOrderID:   handle.GatewayOrderID,
		GatewayPaymentID: "pay_001",
		Signature:        f.gateway.Sign(handle.GatewayOrderID, "pay_001"),
	}
	first, err := f.svc.ConfirmGatewayPayment(context.Background(), proof)
	require.NoError(t, err)

	second, err := f.svc.ConfirmGatewayPayment(context.Background(), proof)
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, models.StatusPaid, second.Status)
	assert.Equal(t, 9, f.stock(t, "tee-1"))
}

func TestConfirmGatewayPaymentBadSignature(t *testing.T) {
	server := fakeGatewayServer()
	defer server.Close()

	f := newOrderFixture(server.URL)
	f.seedProduct(t, "tee-1", 499, 10)

	order, handle, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    "cust-1",
		Items:         []models.OrderLineItem{{ProductID: "tee-1", Quantity: 1}},
		Address:       validAddress(),
		PaymentMethod: models.MethodGateway,
	})
	require.NoError(t, err)

	_, err = f.svc.ConfirmGatewayPayment(context.Background(), payments.Proof{
		GatewayOrderID:   handle.GatewayOrderID,
		GatewayPaymentID: "pay_001",
		Signature:        "forged",
	})
	assert.ErrorIs(t, err, services.ErrPaymentVerificationFailed)

	// The order stays in its pre-confirmation state, retryable.
	current, err := f.svc.GetOrder(order.ID, "cust-1", false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, current.Status)
}

func TestGetPaymentIntentRebuildsHandle(t *testing.T) {
	server := fakeGatewayServer()
	defer server.Close()

	f := newOrderFixture(server.URL)
	f.seedProduct(t, "tee-1", 499, 10)

	order, handle, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    "cust-1",
		Items:         []models.OrderLineItem{{ProductID: "tee-1", Quantity: 1}},
		Address:       validAddress(),
		PaymentMethod: models.MethodGateway,
	})
	require.NoError(t, err)

	refetched, err := f.svc.GetPaymentIntent(order.ID, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, handle.GatewayOrderID, refetched.GatewayOrderID)
	assert.Equal(t, "key_test", refetched.KeyID)

	_, err = f.svc.GetPaymentIntent(order.ID, "cust-2")
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestSubmitManualProofFlow(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 10)

	order, _, err := f.svc.CreateOrder(context.Background(), services.CreateOrderInput{
		CustomerID:    "cust-1",
		Items:         []models.OrderLineItem{{ProductID: "tee-1", Quantity: 1}},
		Address:       validAddress(),
		PaymentMethod: models.MethodManual,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingVerification, order.Status)

	err = f.svc.SubmitManualProof(context.Background(), order.ID, "cust-1", "")
	var vErr *services.ValidationError
	require.True(t, errors.As(err, &vErr))

	require.NoError(t, f.svc.SubmitManualProof(context.Background(), order.ID, "cust-1", "UTR12345"))
	record, err := f.paymentRepo.GetByOrderID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentProofSubmitted, record.Status)
	assert.Equal(t, "UTR12345", record.ProofReference)

	// Admin verifies and the payment record settles with the order.
	verified, err := f.svc.AdminUpdateStatus(order.ID, models.StatusPaid, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, verified.Status)

	record, err = f.paymentRepo.GetByOrderID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCaptured, record.Status)
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 10)
	order := createCODOrder(t, f, "cust-1")

	_, err := f.svc.GetOrder(order.ID, "cust-2", false)
	assert.ErrorIs(t, err, services.ErrForbidden)

	got, err := f.svc.GetOrder(order.ID, "cust-2", true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.GetOrder("missing", "cust-1", false)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}
