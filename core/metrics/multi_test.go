package metrics

import "testing"

type recordSink struct {
	count int
}

func (r *recordSink) RecordDelivery(DeliveryResult) error {
	r.count++
	return nil
}

func (r *recordSink) RecordRefill(RefillEvent) error {
	r.count++
	return nil
}

// deliveryOnly does not implement the optional recorders.
type deliveryOnly struct{ count int }

func (d *deliveryOnly) RecordDelivery(DeliveryResult) error {
	d.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	s3 := &deliveryOnly{}
	m := NewMultiSink(s1, s2, s3)
	if err := m.RecordDelivery(DeliveryResult{TaskID: "a"}); err != nil {
		t.Fatalf("record delivery: %v", err)
	}
	if err := m.RecordRefill(RefillEvent{AddedKG: 10}); err != nil {
		t.Fatalf("record refill: %v", err)
	}
	if err := m.RecordTrip(TripEvent{}); err != nil {
		t.Fatalf("record trip: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("records not forwarded")
	}
	if s3.count != 1 {
		t.Fatalf("expected only the delivery to reach the plain sink, got %d", s3.count)
	}
}

func TestNopSinkImplementsRecorders(t *testing.T) {
	var s MetricsSink = NopSink{}
	if _, ok := s.(RefillRecorder); !ok {
		t.Fatal("NopSink must implement RefillRecorder")
	}
	if _, ok := s.(InventoryRecorder); !ok {
		t.Fatal("NopSink must implement InventoryRecorder")
	}
	if _, ok := s.(TripRecorder); !ok {
		t.Fatal("NopSink must implement TripRecorder")
	}
}

type closingSink struct {
	deliveryOnly
	closed bool
}

func (c *closingSink) Close() { c.closed = true }

func TestMultiSinkCloseForwards(t *testing.T) {
	c := &closingSink{}
	m := NewMultiSink(&recordSink{}, c)
	m.Close()
	if !c.closed {
		t.Fatal("Close not forwarded")
	}
}
