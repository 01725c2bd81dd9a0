package commands_test

import (
	"encoding/json"
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/batch"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var fixtureTime = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

func testAddress(t *testing.T) kernel.Address {
	t.Helper()
	address, err := kernel.NewAddress("12 MG Road", "opposite the park", "Bengaluru", "560001")
	require.NoError(t, err)
	return address
}

func testItems() json.RawMessage {
	return json.RawMessage(`[{"name":"thali","qty":1}]`)
}

// readyOrder builds a scheduled-lunch order already moved to READY,
// belonging to the given kitchen and zone.
func readyOrder(t *testing.T, kitchenID, zoneID kernel.UUID) *order.Order {
	t.Helper()
	window := kernel.MealWindowLunch
	o, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), kitchenID, zoneID,
		&window, testAddress(t), testItems(), fixtureTime, "customer",
	)
	require.NoError(t, err)
	require.NoError(t, o.TransitionTo(order.StatusAccepted, fixtureTime.Add(time.Minute), "kitchen", ""))
	require.NoError(t, o.TransitionTo(order.StatusPreparing, fixtureTime.Add(2*time.Minute), "kitchen", ""))
	require.NoError(t, o.TransitionTo(order.StatusReady, fixtureTime.Add(3*time.Minute), "kitchen", ""))
	return o
}

// collectingBatch builds an empty COLLECTING batch for the kitchen/zone.
func collectingBatch(t *testing.T, kitchenID, zoneID kernel.UUID, capacity int) *batch.Batch {
	t.Helper()
	b, err := batch.NewBatch(
		kernel.NewUUID(),
		"B20260901-TEST",
		kitchenID,
		zoneID,
		kernel.MealWindowLunch,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC),
		capacity,
	)
	require.NoError(t, err)
	return b
}

// claimedBatch builds a DISPATCHED batch owned by driverID containing the
// given orders, which are stamped with the batch membership.
func claimedBatch(t *testing.T, driverID kernel.UUID, members []*order.Order) *batch.Batch {
	t.Helper()
	require.NotEmpty(t, members)

	b := collectingBatch(t, members[0].KitchenID(), members[0].ZoneID(), 15)
	for _, member := range members {
		require.NoError(t, b.AddOrder(member.ID()))
		require.NoError(t, member.AssignToBatch(b.ID()))
	}
	require.NoError(t, b.Offer())
	require.NoError(t, b.Claim(driverID, fixtureTime.Add(10*time.Minute)))
	return b
}
