package metrics

import "github.com/kilianp07/logisim/core/factory"

// Config defines settings for metrics sinks. PrometheusAddr, when set, is
// the listen address of the /metrics exporter.
type Config struct {
	Sinks          []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
	PrometheusAddr string                 `json:"prometheus_addr" yaml:"prometheus_addr"`
}
