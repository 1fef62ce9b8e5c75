package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/logisim/core/events"
	"github.com/kilianp07/logisim/internal/eventbus"
)

type message struct {
	class, topic string
	payload      []byte
}

type capturePublisher struct {
	mu   sync.Mutex
	msgs []message
}

func (c *capturePublisher) Publish(class, topic string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, message{class, topic, payload})
	return nil
}

func (c *capturePublisher) snapshot() []message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]message(nil), c.msgs...)
}

func TestTopicEscapesReservedCharacters(t *testing.T) {
	assert.Equal(t, "logisim/deliveries/GDL_Airport", Topic("logisim", "deliveries", "GDL Airport"))
	assert.Equal(t, "p/a_b_c_", Topic("p", "a/b+c#"))
}

func TestStartEventPublisher(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	pub := &capturePublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventPublisher(ctx, bus, pub, "logisim")
	require.Equal(t, 1, bus.Subscribers())

	bus.Publish(events.TaskEvent{TaskID: "t1", Destination: "SLP", Status: "delivered", Products: 2, WeightKG: 30})
	bus.Publish(events.RefillEvent{Warehouse: "GDL", Phase: events.WindowClosed, Day: 2, AddedKG: 120})
	bus.Publish(events.VehicleEvent{VehicleID: "T-SLP", Kind: "ground", From: "GDL", To: "SLP"})
	bus.Publish("unrelated")

	require.Eventually(t, func() bool { return len(pub.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	msgs := pub.snapshot()

	assert.Equal(t, "task", msgs[0].class)
	assert.Equal(t, "logisim/deliveries/SLP", msgs[0].topic)
	var task taskMessage
	require.NoError(t, json.Unmarshal(msgs[0].payload, &task))
	assert.Equal(t, "t1", task.TaskID)
	assert.Equal(t, "delivered", task.Status)
	assert.InDelta(t, 30, task.WeightKG, 1e-9)

	assert.Equal(t, "logisim/refills/GDL", msgs[1].topic)
	var refill refillMessage
	require.NoError(t, json.Unmarshal(msgs[1].payload, &refill))
	assert.Equal(t, "window_closed", refill.Phase)
	assert.InDelta(t, 120, refill.AddedKG, 1e-9)

	assert.Equal(t, "vehicle", msgs[2].class)
	assert.Equal(t, "logisim/vehicles/T-SLP", msgs[2].topic)

	cancel()
	require.Eventually(t, func() bool { return bus.Subscribers() == 0 }, time.Second, 5*time.Millisecond)
}
