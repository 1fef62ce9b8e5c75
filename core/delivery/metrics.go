package delivery

import "github.com/prometheus/client_golang/prometheus"

var (
	tasksCreated     prometheus.Counter
	deliveriesTotal  *prometheus.CounterVec
	deliveryDuration *prometheus.HistogramVec
	activeDeliveries prometheus.Gauge
)

func newCollectors() (prometheus.Counter, *prometheus.CounterVec, *prometheus.HistogramVec, prometheus.Gauge) {
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delivery_tasks_created_total",
		Help: "Number of delivery tasks created",
	})
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_tasks_finished_total",
			Help: "Number of delivery tasks reaching an outcome",
		},
		[]string{"outcome", "vehicle_kind"},
	)
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delivery_task_duration_sim_hours",
			Help:    "Simulated hours from task creation to delivery",
			Buckets: []float64{1, 2, 4, 8, 12, 24, 48},
		},
		[]string{"vehicle_kind"},
	)
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "delivery_tasks_active",
		Help: "Number of tasks currently executing",
	})
	return created, total, dur, active
}

func init() {
	tasksCreated, deliveriesTotal, deliveryDuration, activeDeliveries = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers delivery metrics on reg, or on the default
// registerer when reg is nil.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(tasksCreated, deliveriesTotal, deliveryDuration, activeDeliveries)
}

// ResetMetrics recreates the collectors for tests.
func ResetMetrics(reg prometheus.Registerer) {
	tasksCreated, deliveriesTotal, deliveryDuration, activeDeliveries = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
