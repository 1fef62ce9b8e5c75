package metrics

// MultiSink fans records out to several sinks. Optional recorders are only
// forwarded to sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDelivery forwards the result to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDelivery(res DeliveryResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordDelivery(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordRefill forwards refill events.
func (m *MultiSink) RecordRefill(ev RefillEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RefillRecorder); ok {
			if err := rec.RecordRefill(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordInventory forwards load samples.
func (m *MultiSink) RecordInventory(lv InventoryLevel) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(InventoryRecorder); ok {
			if err := rec.RecordInventory(lv); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTrip forwards transport legs.
func (m *MultiSink) RecordTrip(ev TripEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TripRecorder); ok {
			if err := rec.RecordTrip(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close closes every sink that holds a connection.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}
