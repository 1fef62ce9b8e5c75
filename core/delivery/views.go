package delivery

import (
	"context"

	"github.com/kilianp07/logisim/core/delivery/logging"
)

func (o *Orchestrator) filter(keep func(Status) bool) []*Task {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var out []*Task
	for _, t := range o.tasks {
		if keep == nil || keep(t.Status()) {
			out = append(out, t)
		}
	}
	return out
}

// AllTasks returns every task in creation order.
func (o *Orchestrator) AllTasks() []*Task { return o.filter(nil) }

// PendingTasks returns tasks that have not reached an outcome.
func (o *Orchestrator) PendingTasks() []*Task {
	return o.filter(func(s Status) bool { return !s.Terminal() })
}

// CompletedTasks returns delivered tasks.
func (o *Orchestrator) CompletedTasks() []*Task {
	return o.filter(func(s Status) bool { return s == Delivered })
}

// CancelledTasks returns cancelled tasks.
func (o *Orchestrator) CancelledTasks() []*Task {
	return o.filter(func(s Status) bool { return s == Cancelled })
}

// Task looks a task up by ID.
func (o *Orchestrator) Task(id string) (*Task, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, t := range o.tasks {
		if t.id == id {
			return t, true
		}
	}
	return nil, false
}

// Stats reduces the delivery log per destination.
func (o *Orchestrator) Stats(ctx context.Context) ([]logging.DestinationStats, error) {
	recs, err := o.logStore().Query(ctx, logging.Query{})
	if err != nil {
		return nil, err
	}
	return logging.Reduce(recs), nil
}

// DeliveriesByDestination counts delivered tasks per destination.
func (o *Orchestrator) DeliveriesByDestination(ctx context.Context) (map[string]int, error) {
	return logging.CountByDestination(ctx, o.logStore())
}

// History returns log records matching q.
func (o *Orchestrator) History(ctx context.Context, q logging.Query) ([]logging.Record, error) {
	return o.logStore().Query(ctx, q)
}
