package metrics

import "time"

// DeliveryResult is recorded once per task reaching an outcome.
type DeliveryResult struct {
	TaskID        string
	Destination   string
	VehicleID     string
	VehicleKind   string
	Outcome       string
	Products      int
	WeightKG      float64
	DurationHours float64
	SimHour       float64
	Time          time.Time
}

// MetricsSink records delivery outcomes.
type MetricsSink interface {
	RecordDelivery(res DeliveryResult) error
}

// RefillEvent describes a nightly refill.
type RefillEvent struct {
	Warehouse  string
	Day        int
	ConsumedKG float64
	AddedKG    float64
	Units      int
	Time       time.Time
}

// RefillRecorder is implemented by sinks able to record refills.
type RefillRecorder interface {
	RecordRefill(ev RefillEvent) error
}

// InventoryLevel is a warehouse load sample.
type InventoryLevel struct {
	Warehouse  string
	LoadKG     float64
	CapacityKG float64
	Units      int
	SimHour    float64
	Time       time.Time
}

// InventoryRecorder records warehouse load samples.
type InventoryRecorder interface {
	RecordInventory(lv InventoryLevel) error
}

// TripEvent describes a completed transport leg.
type TripEvent struct {
	VehicleID   string
	Kind        string
	From        string
	To          string
	LoadKG      float64
	TravelHours float64
	Time        time.Time
}

// TripRecorder records transport legs.
type TripRecorder interface {
	RecordTrip(ev TripEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDelivery(DeliveryResult) error  { return nil }
func (NopSink) RecordRefill(RefillEvent) error       { return nil }
func (NopSink) RecordInventory(InventoryLevel) error { return nil }
func (NopSink) RecordTrip(TripEvent) error           { return nil }
