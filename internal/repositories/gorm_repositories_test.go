package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"vastra/internal/models"
	"vastra/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens a per-test in-memory SQLite database with the full
// schema migrated. cache=shared keeps the database alive across the
// connections GORM pools.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.InventoryRecord{},
		&models.Order{},
		&models.OrderLineItem{},
		&models.OrderCheckpoint{},
		&models.Coupon{},
		&models.CouponRedemption{},
		&models.PaymentRecord{},
	))
	return db
}

func TestGORMInventoryCompareAndDecrement(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMInventoryRepository(db)

	rec := &models.InventoryRecord{ProductID: "prod-1", Stock: 5}
	require.NoError(t, repo.Create(rec))

	ok, err := repo.DecrementStock(rec.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	// Only 2 left, a decrement of 3 must not touch the row.
	ok, err = repo.DecrementStock(rec.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	current, err := repo.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Stock)

	require.NoError(t, repo.IncrementStock(rec.ID, 4))
	current, err = repo.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, current.Stock)

	records, err := repo.FindByProduct("prod-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGORMCouponRedemptionInsertOnce(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMCouponRepository(db)

	require.NoError(t, repo.Create(&models.Coupon{Code: "FEST10", DiscountPercent: 10, Active: true}))
	coupon, err := repo.GetByCode("FEST10")
	require.NoError(t, err)

	inserted, err := repo.InsertRedemption(&models.CouponRedemption{
		CouponID: coupon.ID, CustomerID: "cust-1",
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	// The unique index absorbs the duplicate; no error, no second row.
	inserted, err = repo.InsertRedemption(&models.CouponRedemption{
		CouponID: coupon.ID, CustomerID: "cust-1",
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	used, err := repo.HasRedemption(coupon.ID, "cust-1")
	require.NoError(t, err)
	assert.True(t, used)

	used, err = repo.HasRedemption(coupon.ID, "cust-2")
	require.NoError(t, err)
	assert.False(t, used)
}

func testOrder(customerID string, status models.OrderStatus) *models.Order {
	return &models.Order{
		CustomerID: customerID,
		Items: []models.OrderLineItem{
			{ProductID: "prod-1", Quantity: 2, UnitPrice: 499},
		},
		Subtotal:      998,
		Shipping:      49,
		Total:         1047,
		PaymentMethod: models.MethodCOD,
		Status:        status,
		Address: models.ShippingAddress{
			Name: "Asha Verma", Line1: "14 MG Road", City: "Bengaluru",
			State: "Karnataka", Pincode: "560001", Phone: "9876543210",
		},
		Return: models.ReturnRequest{Status: models.ReturnNone},
	}
}

func TestGORMOrderStatusGuard(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMOrderRepository(db)

	order := testOrder("cust-1", models.StatusPending)
	require.NoError(t, repo.Create(order))

	got, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1, "line items are loaded with the order")

	ok, err := repo.UpdateStatusIf(order.ID,
		[]models.OrderStatus{models.StatusPending},
		models.StatusCancelled,
		map[string]interface{}{"cancel_reason": "changed my mind"},
	)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second writer loses: the precondition no longer holds.
	ok, err = repo.UpdateStatusIf(order.ID,
		[]models.OrderStatus{models.StatusPending, models.StatusPaid},
		models.StatusShipped,
		map[string]interface{}{"tracking_id": "AWB1"},
	)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = repo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, "changed my mind", got.CancelReason)
	assert.Empty(t, got.TrackingID)
}

func TestGORMOrderReturnGuard(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMOrderRepository(db)

	order := testOrder("cust-1", models.StatusDelivered)
	require.NoError(t, repo.Create(order))

	now := time.Now()
	ok, err := repo.UpdateReturnIf(order.ID, models.StatusDelivered,
		[]models.ReturnStatus{models.ReturnNone, models.ReturnRejected},
		map[string]interface{}{
			"return_status":       models.ReturnPending,
			"return_reason":       "fabric defect",
			"return_method":       models.RefundUPI,
			"return_upi_id":       "asha@okbank",
			"return_requested_at": now,
		})
	require.NoError(t, err)
	assert.True(t, ok)

	// Already pending, a second request must not pass the guard.
	ok, err = repo.UpdateReturnIf(order.ID, models.StatusDelivered,
		[]models.ReturnStatus{models.ReturnNone, models.ReturnRejected},
		map[string]interface{}{"return_status": models.ReturnPending})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReturnPending, got.Return.Status)
	assert.Equal(t, "fabric defect", got.Return.Reason)
	assert.Equal(t, "asha@okbank", got.Return.UPIID)

	// Approval moves both the sub-record and the order itself.
	ok, err = repo.UpdateReturnIf(order.ID, models.StatusDelivered,
		[]models.ReturnStatus{models.ReturnPending},
		map[string]interface{}{
			"return_status": models.ReturnApproved,
			"status":        models.StatusReturned,
		})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, got.Status)
	assert.Equal(t, models.ReturnApproved, got.Return.Status)
}

func TestGORMOrderDeleteRemovesChildren(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMOrderRepository(db)

	order := testOrder("cust-1", models.StatusPending)
	require.NoError(t, repo.Create(order))
	require.NoError(t, repo.AppendCheckpoint(&models.OrderCheckpoint{
		OrderID: order.ID, Status: models.StatusPending, Note: "order placed",
	}))

	require.NoError(t, repo.Delete(order.ID))

	_, err := repo.GetByID(order.ID)
	assert.Error(t, err)

	var itemCount, checkpointCount int64
	require.NoError(t, db.Model(&models.OrderLineItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	require.NoError(t, db.Model(&models.OrderCheckpoint{}).Where("order_id = ?", order.ID).Count(&checkpointCount).Error)
	assert.Zero(t, itemCount)
	assert.Zero(t, checkpointCount)
}

func TestGORMOrderCheckpointTimeline(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMOrderRepository(db)

	order := testOrder("cust-1", models.StatusPending)
	require.NoError(t, repo.Create(order))

	base := time.Now().Add(-time.Hour)
	for i, status := range []models.OrderStatus{models.StatusPending, models.StatusShipped, models.StatusDelivered} {
		require.NoError(t, repo.AppendCheckpoint(&models.OrderCheckpoint{
			OrderID: order.ID,
			Status:  status,
			At:      base.Add(time.Duration(i) * time.Minute),
		}))
	}

	checkpoints, err := repo.GetCheckpoints(order.ID)
	require.NoError(t, err)
	require.Len(t, checkpoints, 3)
	assert.Equal(t, models.StatusPending, checkpoints[0].Status)
	assert.Equal(t, models.StatusDelivered, checkpoints[2].Status)
}

func TestGORMPaymentCapturedOnce(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMPaymentRepository(db)

	record := &models.PaymentRecord{
		OrderID:        "order-1",
		Method:         models.MethodGateway,
		Amount:         1047,
		Currency:       "INR",
		GatewayOrderID: "gw_abc",
		Status:         models.PaymentInitiated,
	}
	require.NoError(t, repo.Create(record))

	byGateway, err := repo.GetByGatewayOrderID("gw_abc")
	require.NoError(t, err)
	assert.Equal(t, record.ID, byGateway.ID)

	captured, err := repo.MarkCaptured(record.ID, "pay_001")
	require.NoError(t, err)
	assert.True(t, captured)

	// The replayed callback finds the record already captured.
	captured, err = repo.MarkCaptured(record.ID, "pay_001")
	require.NoError(t, err)
	assert.False(t, captured)

	current, err := repo.GetByOrderID("order-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCaptured, current.Status)
	assert.Equal(t, "pay_001", current.GatewayPaymentID)
}

func TestGORMPaymentAttachProof(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMPaymentRepository(db)

	record := &models.PaymentRecord{
		OrderID: "order-1",
		Method:  models.MethodManual,
		Amount:  1047,
		Status:  models.PaymentInitiated,
	}
	require.NoError(t, repo.Create(record))

	ok, err := repo.AttachProof("order-1", "UTR12345")
	require.NoError(t, err)
	assert.True(t, ok)

	current, err := repo.GetByOrderID("order-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentProofSubmitted, current.Status)
	assert.Equal(t, "UTR12345", current.ProofReference)

	// After capture the proof is frozen.
	_, err = repo.MarkCaptured(record.ID, "UTR12345")
	require.NoError(t, err)
	ok, err = repo.AttachProof("order-1", "UTR99999")
	require.NoError(t, err)
	assert.False(t, ok)
}
