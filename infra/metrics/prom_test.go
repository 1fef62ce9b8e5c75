package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/logisim/core/metrics"
)

func TestPromSink_RecordDelivery(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordDelivery(coremetrics.DeliveryResult{VehicleKind: "ground", Outcome: "delivered", DurationHours: 3}))
	require.NoError(t, sink.RecordDelivery(coremetrics.DeliveryResult{VehicleKind: "ground", Outcome: "delivered", DurationHours: 5}))
	require.NoError(t, sink.RecordDelivery(coremetrics.DeliveryResult{Outcome: "cancelled"}))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.deliveries.WithLabelValues("ground", "delivered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.deliveries.WithLabelValues("none", "cancelled")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.duration))
}

func TestPromSink_RefillInventoryTrip(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordRefill(coremetrics.RefillEvent{Warehouse: "GDL", AddedKG: 120}))
	require.NoError(t, sink.RecordRefill(coremetrics.RefillEvent{Warehouse: "GDL", AddedKG: 30}))
	require.NoError(t, sink.RecordInventory(coremetrics.InventoryLevel{Warehouse: "GDL", LoadKG: 870}))
	require.NoError(t, sink.RecordTrip(coremetrics.TripEvent{Kind: "air", To: "SLP"}))

	assert.Equal(t, 150.0, testutil.ToFloat64(sink.refillKG.WithLabelValues("GDL")))
	assert.Equal(t, 870.0, testutil.ToFloat64(sink.load.WithLabelValues("GDL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.trips.WithLabelValues("air", "SLP")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordTrip(coremetrics.TripEvent{Kind: "ground", To: "City A"}))
	require.NoError(t, second.RecordTrip(coremetrics.TripEvent{Kind: "ground", To: "City A"}))
	assert.Equal(t, 2.0, testutil.ToFloat64(second.trips.WithLabelValues("ground", "City A")))
}
