package metrics

import (
	"errors"

	"github.com/kilianp07/logisim/core/factory"
	coremetrics "github.com/kilianp07/logisim/core/metrics"
)

func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})
	// metrics.prometheus_addr owns the exporter; the sink only owns collectors.
	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSink()
	})
	_ = coremetrics.RegisterMetricsSink("influx", newInfluxFromConf)
}

func newInfluxFromConf(conf map[string]any) (coremetrics.MetricsSink, error) {
	var c InfluxConfig
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	if c.URL == "" || c.Bucket == "" || c.Org == "" {
		return nil, errors.New("influx sink requires url, org and bucket")
	}
	return NewInfluxSinkWithFallback(c), nil
}
