package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/kilianp07/logisim/core/events"
	"github.com/kilianp07/logisim/infra/logger"
	"github.com/kilianp07/logisim/internal/eventbus"
)

// Publisher sends a payload to a topic. PahoClient implements it.
type Publisher interface {
	Publish(class, topic string, payload []byte) error
}

type taskMessage struct {
	TaskID        string  `json:"task_id"`
	Destination   string  `json:"destination"`
	VehicleID     string  `json:"vehicle_id,omitempty"`
	VehicleKind   string  `json:"vehicle_kind,omitempty"`
	Status        string  `json:"status"`
	Reason        string  `json:"reason,omitempty"`
	Products      int     `json:"products"`
	WeightKG      float64 `json:"weight_kg"`
	SimHour       float64 `json:"sim_hour"`
	DurationHours float64 `json:"duration_hours,omitempty"`
	Timestamp     int64   `json:"timestamp"`
}

type refillMessage struct {
	Warehouse   string  `json:"warehouse"`
	Phase       string  `json:"phase"`
	Day         int     `json:"day"`
	SimHour     float64 `json:"sim_hour"`
	ReferenceKG float64 `json:"reference_kg"`
	LoadKG      float64 `json:"load_kg"`
	ConsumedKG  float64 `json:"consumed_kg"`
	AddedKG     float64 `json:"added_kg"`
	Units       int     `json:"units"`
	Timestamp   int64   `json:"timestamp"`
}

type vehicleMessage struct {
	VehicleID   string  `json:"vehicle_id"`
	Kind        string  `json:"kind"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	LoadKG      float64 `json:"load_kg"`
	TravelHours float64 `json:"travel_hours"`
	Timestamp   int64   `json:"timestamp"`
}

var topicEscaper = strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_")

// Topic joins prefix and segments, replacing characters MQTT reserves.
func Topic(prefix string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, prefix)
	for _, s := range segments {
		parts = append(parts, topicEscaper.Replace(s))
	}
	return strings.Join(parts, "/")
}

// StartEventPublisher mirrors task, refill and vehicle events from the bus
// as JSON under prefix:
//
//	<prefix>/deliveries/<destination>
//	<prefix>/refills/<warehouse>
//	<prefix>/vehicles/<vehicle_id>
//
// It stops when ctx is cancelled or the bus is closed.
func StartEventPublisher(ctx context.Context, bus eventbus.EventBus, pub Publisher, prefix string) {
	if bus == nil || pub == nil {
		return
	}
	log := logger.New("mqtt_publisher")
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
				class, topic, msg, ok := encode(prefix, ev)
				if !ok {
					continue
				}
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Errorf("encode %s: %v", topic, err)
					continue
				}
				if err := pub.Publish(class, topic, payload); err != nil {
					log.Errorf("publish %s: %v", topic, err)
				}
			}
		}
	}()
}

func encode(prefix string, ev eventbus.Event) (class, topic string, msg any, ok bool) {
	now := time.Now().UnixMilli()
	switch e := ev.(type) {
	case events.TaskEvent:
		return "task", Topic(prefix, "deliveries", e.Destination), taskMessage{
			TaskID:        e.TaskID,
			Destination:   e.Destination,
			VehicleID:     e.VehicleID,
			VehicleKind:   e.VehicleKind,
			Status:        e.Status,
			Reason:        e.Reason,
			Products:      e.Products,
			WeightKG:      e.WeightKG,
			SimHour:       e.SimHour,
			DurationHours: e.DurationHours,
			Timestamp:     now,
		}, true
	case events.RefillEvent:
		return "refill", Topic(prefix, "refills", e.Warehouse), refillMessage{
			Warehouse:   e.Warehouse,
			Phase:       string(e.Phase),
			Day:         e.Day,
			SimHour:     e.SimHour,
			ReferenceKG: e.ReferenceKG,
			LoadKG:      e.LoadKG,
			ConsumedKG:  e.ConsumedKG,
			AddedKG:     e.AddedKG,
			Units:       e.Units,
			Timestamp:   now,
		}, true
	case events.VehicleEvent:
		return "vehicle", Topic(prefix, "vehicles", e.VehicleID), vehicleMessage{
			VehicleID:   e.VehicleID,
			Kind:        e.Kind,
			From:        e.From,
			To:          e.To,
			LoadKG:      e.LoadKG,
			TravelHours: e.TravelHours,
			Timestamp:   now,
		}, true
	default:
		return "", "", nil, false
	}
}
