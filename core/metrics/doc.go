// Package metrics defines the sinks that receive delivery, refill and
// warehouse measurements. Implementations such as the Prometheus and
// InfluxDB sinks live in infra/metrics and register themselves with the
// factory; NewMetricsSink returns a MultiSink when several are configured.
package metrics
