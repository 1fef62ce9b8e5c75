package inventory

import "github.com/prometheus/client_golang/prometheus"

var (
	warehouseLoad *prometheus.GaugeVec
	unitsAdded    *prometheus.CounterVec
	unitsRemoved  *prometheus.CounterVec
)

func newCollectors() (*prometheus.GaugeVec, *prometheus.CounterVec, *prometheus.CounterVec) {
	load := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "warehouse_load_kg",
			Help: "Current aggregate weight stored in the warehouse",
		},
		[]string{"warehouse"},
	)
	added := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_units_added_total",
			Help: "Number of product units added to the warehouse",
		},
		[]string{"warehouse", "category"},
	)
	removed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_units_removed_total",
			Help: "Number of product units removed from the warehouse",
		},
		[]string{"warehouse", "category"},
	)
	return load, added, removed
}

func init() {
	warehouseLoad, unitsAdded, unitsRemoved = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers inventory metrics on reg, or on the default
// registerer when reg is nil.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(warehouseLoad, unitsAdded, unitsRemoved)
}

// ResetMetrics recreates the collectors for tests and registers them on reg
// when it is not nil.
func ResetMetrics(reg prometheus.Registerer) {
	warehouseLoad, unitsAdded, unitsRemoved = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
