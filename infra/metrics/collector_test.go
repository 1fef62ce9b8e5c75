package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/logisim/core/events"
	coremetrics "github.com/kilianp07/logisim/core/metrics"
	"github.com/kilianp07/logisim/internal/eventbus"
)

type captureSink struct {
	coremetrics.NopSink
	mu      sync.Mutex
	refills []coremetrics.RefillEvent
	levels  []coremetrics.InventoryLevel
}

func (c *captureSink) RecordRefill(ev coremetrics.RefillEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refills = append(c.refills, ev)
	return nil
}

func (c *captureSink) RecordInventory(lv coremetrics.InventoryLevel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.levels = append(c.levels, lv)
	return nil
}

func (c *captureSink) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.refills), len(c.levels)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &captureSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	bus.Publish(events.RefillEvent{Warehouse: "GDL", Phase: events.WindowOpened, Day: 1, LoadKG: 700})
	bus.Publish(events.RefillEvent{Warehouse: "GDL", Phase: events.WindowClosed, Day: 2, LoadKG: 990, ConsumedKG: 300, AddedKG: 290, Units: 4})
	bus.Publish(events.RefillEvent{Warehouse: "GDL", Phase: events.WindowClosed, Day: 3, LoadKG: 990})
	bus.Publish(events.TaskEvent{TaskID: "ignored"})

	require.Eventually(t, func() bool {
		_, levels := sink.counts()
		return levels == 3
	}, time.Second, 5*time.Millisecond)

	refills, _ := sink.counts()
	assert.Equal(t, 1, refills)
	sink.mu.Lock()
	assert.Equal(t, 290.0, sink.refills[0].AddedKG)
	assert.Equal(t, 2, sink.refills[0].Day)
	sink.mu.Unlock()
}

func TestStartEventCollectorStopsOnCancel(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	ctx, cancel := context.WithCancel(context.Background())
	StartEventCollector(ctx, bus, coremetrics.NopSink{})
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.Eventually(t, func() bool { return bus.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}
