package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/logisim/core/events"
	coremetrics "github.com/kilianp07/logisim/core/metrics"
	"github.com/kilianp07/logisim/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and forwards refill events
// to sinks implementing the matching recorders. Delivery results and trips
// are recorded by the orchestrator directly. It stops when the context is
// canceled or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, ok := ev.(events.RefillEvent); ok {
					collectRefill(sink, e)
				}
			}
		}
	}()
}

func collectRefill(sink coremetrics.MetricsSink, e events.RefillEvent) {
	now := time.Now()
	if r, ok := sink.(coremetrics.InventoryRecorder); ok {
		_ = r.RecordInventory(coremetrics.InventoryLevel{
			Warehouse: e.Warehouse,
			LoadKG:    e.LoadKG,
			SimHour:   e.SimHour,
			Time:      now,
		})
	}
	if e.Phase != events.WindowClosed || e.AddedKG <= 0 {
		return
	}
	if r, ok := sink.(coremetrics.RefillRecorder); ok {
		_ = r.RecordRefill(coremetrics.RefillEvent{
			Warehouse:  e.Warehouse,
			Day:        e.Day,
			ConsumedKG: e.ConsumedKG,
			AddedKG:    e.AddedKG,
			Units:      e.Units,
			Time:       now,
		})
	}
}
