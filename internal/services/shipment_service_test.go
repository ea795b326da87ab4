package services_test

import (
	"testing"

	"vastra/internal/models"
	"vastra/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackBuildsTimelineFromCheckpoints(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 10)
	order := createCODOrder(t, f, "cust-1")

	_, err := f.svc.AdminUpdateStatus(order.ID, models.StatusShipped, "AWB123456")
	require.NoError(t, err)
	_, err = f.svc.AdminUpdateStatus(order.ID, models.StatusDelivered, "")
	require.NoError(t, err)

	shipments := services.NewShipmentService(f.orderRepo)
	info, err := shipments.Track(order.ID, "cust-1", false)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDelivered, info.Status)
	assert.Equal(t, "AWB123456", info.TrackingID)
	require.Len(t, info.Checkpoints, 3) // placed, shipped, delivered
	assert.Equal(t, models.StatusPending, info.Checkpoints[0].Status)
	assert.Equal(t, models.StatusShipped, info.Checkpoints[1].Status)
	assert.Equal(t, models.StatusDelivered, info.Checkpoints[2].Status)
}

func TestTrackEnforcesOwnership(t *testing.T) {
	f := newOrderFixture("")
	f.seedProduct(t, "tee-1", 499, 10)
	order := createCODOrder(t, f, "cust-1")

	shipments := services.NewShipmentService(f.orderRepo)

	_, err := shipments.Track(order.ID, "cust-2", false)
	assert.ErrorIs(t, err, services.ErrForbidden)

	info, err := shipments.Track(order.ID, "cust-2", true)
	require.NoError(t, err)
	assert.Equal(t, order.ID, info.OrderID)

	_, err = shipments.Track("missing", "cust-1", false)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}
