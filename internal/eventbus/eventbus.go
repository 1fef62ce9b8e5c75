package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus implements a simple publish/subscribe event bus for heterogeneous
// domain events. Consumers type-switch on what they receive.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus implementation.
type Bus struct {
	*TypedBus[Event]
}

// New creates a new Bus. Domain events are bursty (one per task transition),
// so subscribers get a deeper buffer than typed buses.
func New() *Bus { return &Bus{TypedBus: NewTypedWithBuffer[Event](64)} }

var _ EventBus = (*Bus)(nil)
