package replenish

import "github.com/prometheus/client_golang/prometheus"

var (
	refillsTotal  prometheus.Counter
	refillWeight  prometheus.Counter
	skippedCycles prometheus.Counter
)

func newCollectors() (prometheus.Counter, prometheus.Counter, prometheus.Counter) {
	refills := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replenish_refills_total",
		Help: "Number of nightly refills executed",
	})
	weight := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replenish_refill_weight_kg_total",
		Help: "Weight added by nightly refills",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replenish_skipped_cycles_total",
		Help: "Window closes where nothing was consumed",
	})
	return refills, weight, skipped
}

func init() {
	refillsTotal, refillWeight, skippedCycles = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers replenishment metrics on reg, or on the
// default registerer when reg is nil.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(refillsTotal, refillWeight, skippedCycles)
}

// ResetMetrics recreates the collectors for tests.
func ResetMetrics(reg prometheus.Registerer) {
	refillsTotal, refillWeight, skippedCycles = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
