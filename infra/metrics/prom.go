package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/logisim/core/metrics"
)

// PromSink records delivery, refill and trip events in Prometheus metrics.
type PromSink struct {
	deliveries *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	refillKG   *prometheus.CounterVec
	load       *prometheus.GaugeVec
	trips      *prometheus.CounterVec
}

// NewPromSink registers the sink metrics on the default Prometheus registerer.
// The HTTP endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_deliveries_total",
		Help: "Delivery tasks by outcome and vehicle kind",
	}, []string{"vehicle_kind", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sim_delivery_hours",
		Help:    "Simulated hours from task creation to delivery",
		Buckets: []float64{1, 2, 4, 8, 12, 24, 48},
	}, []string{"vehicle_kind"})
	refillKG := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_refill_weight_kg_total",
		Help: "Weight added by nightly refills",
	}, []string{"warehouse"})
	load := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_warehouse_load_kg",
		Help: "Last sampled warehouse load",
	}, []string{"warehouse"})
	trips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_vehicle_trips_total",
		Help: "Transport legs by vehicle kind and destination",
	}, []string{"kind", "to"})

	var err error
	if deliveries, err = register(reg, deliveries); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if refillKG, err = register(reg, refillKG); err != nil {
		return nil, err
	}
	if load, err = register(reg, load); err != nil {
		return nil, err
	}
	if trips, err = register(reg, trips); err != nil {
		return nil, err
	}
	return &PromSink{deliveries: deliveries, duration: duration, refillKG: refillKG, load: load, trips: trips}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDelivery counts the outcome and observes the duration of delivered tasks.
func (s *PromSink) RecordDelivery(res coremetrics.DeliveryResult) error {
	kind := res.VehicleKind
	if kind == "" {
		kind = "none"
	}
	s.deliveries.WithLabelValues(kind, res.Outcome).Inc()
	if res.Outcome == "delivered" {
		s.duration.WithLabelValues(kind).Observe(res.DurationHours)
	}
	return nil
}

// RecordRefill adds the refilled weight.
func (s *PromSink) RecordRefill(ev coremetrics.RefillEvent) error {
	s.refillKG.WithLabelValues(ev.Warehouse).Add(ev.AddedKG)
	return nil
}

// RecordInventory sets the load gauge.
func (s *PromSink) RecordInventory(lv coremetrics.InventoryLevel) error {
	s.load.WithLabelValues(lv.Warehouse).Set(lv.LoadKG)
	return nil
}

// RecordTrip counts a transport leg.
func (s *PromSink) RecordTrip(ev coremetrics.TripEvent) error {
	s.trips.WithLabelValues(ev.Kind, ev.To).Inc()
	return nil
}
