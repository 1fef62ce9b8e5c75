package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/logisim/core/metrics"
	"github.com/kilianp07/logisim/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes simulation events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordDelivery writes one delivery point per finished task.
func (s *InfluxSink) RecordDelivery(res coremetrics.DeliveryResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("delivery").
		AddTag("destination", res.Destination).
		AddTag("outcome", res.Outcome)
	if res.VehicleID != "" {
		p = p.AddTag("vehicle_id", res.VehicleID).
			AddTag("vehicle_kind", res.VehicleKind)
	}
	p = p.AddField("task_id", res.TaskID).
		AddField("products", res.Products).
		AddField("weight_kg", round3(res.WeightKG)).
		AddField("duration_h", round3(res.DurationHours)).
		AddField("sim_hour", round3(res.SimHour)).
		SetTime(res.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRefill writes a nightly refill.
func (s *InfluxSink) RecordRefill(ev coremetrics.RefillEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("refill").
		AddTag("warehouse", ev.Warehouse).
		AddField("day", ev.Day).
		AddField("consumed_kg", round3(ev.ConsumedKG)).
		AddField("added_kg", round3(ev.AddedKG)).
		AddField("units", ev.Units).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordInventory writes a warehouse load sample.
func (s *InfluxSink) RecordInventory(lv coremetrics.InventoryLevel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("inventory_level").
		AddTag("warehouse", lv.Warehouse).
		AddField("load_kg", round3(lv.LoadKG)).
		AddField("sim_hour", round3(lv.SimHour))
	if lv.CapacityKG > 0 {
		p = p.AddField("occupancy_pct", round3(lv.LoadKG/lv.CapacityKG*100))
	}
	p = p.SetTime(lv.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrip writes a transport leg.
func (s *InfluxSink) RecordTrip(ev coremetrics.TripEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("vehicle_trip").
		AddTag("vehicle_id", ev.VehicleID).
		AddTag("kind", ev.Kind).
		AddTag("from", ev.From).
		AddTag("to", ev.To).
		AddField("load_kg", round3(ev.LoadKG)).
		AddField("travel_h", round3(ev.TravelHours)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
