package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/logisim/core/delivery/logging"
	"github.com/kilianp07/logisim/core/events"
	"github.com/kilianp07/logisim/core/inventory"
	"github.com/kilianp07/logisim/core/logger"
	"github.com/kilianp07/logisim/core/metrics"
	"github.com/kilianp07/logisim/core/model"
	"github.com/kilianp07/logisim/core/monitoring"
	"github.com/kilianp07/logisim/core/vehicle"
	"github.com/kilianp07/logisim/internal/eventbus"
)

// Stock is the inventory surface the orchestrator needs.
type Stock interface {
	HasEnough(required []model.Product) bool
	Reserve(holder string, units []model.Product) ([]model.Product, error)
	Commit(holder string) ([]model.Product, error)
	Release(holder string) int
	Select(opts inventory.SelectOptions) []model.Product
	Add(units ...model.Product) []model.Product
}

// Clock supplies the simulated hour used for task timestamps.
type Clock interface {
	Now() float64
}

type zeroClock struct{}

func (zeroClock) Now() float64 { return 0 }

// Orchestrator creates tasks, matches them to vehicles and runs them.
type Orchestrator struct {
	stock  Stock
	clock  Clock
	sink   metrics.MetricsSink
	bus    eventbus.EventBus
	logger logger.Logger

	// selectMu serialises selection and reservation across creators.
	selectMu sync.Mutex

	mu    sync.RWMutex
	fleet []*vehicle.Vehicle
	tasks []*Task
	store logging.LogStore
}

// NewOrchestrator wires an orchestrator around stock. clock, sink, bus and
// log are optional.
func NewOrchestrator(stock Stock, clock Clock, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Orchestrator, error) {
	if stock == nil {
		return nil, fmt.Errorf("delivery: nil stock provided to NewOrchestrator")
	}
	if clock == nil {
		clock = zeroClock{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Orchestrator{
		stock:  stock,
		clock:  clock,
		sink:   sink,
		bus:    bus,
		logger: logger.OrNop(log),
		store:  logging.NewMemoryStore(),
	}, nil
}

// SetLogStore replaces the delivery log store.
func (o *Orchestrator) SetLogStore(store logging.LogStore) {
	if store == nil {
		return
	}
	o.mu.Lock()
	o.store = store
	o.mu.Unlock()
}

func (o *Orchestrator) logStore() logging.LogStore {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.store
}

// Close closes the log store.
func (o *Orchestrator) Close() error {
	return o.logStore().Close()
}

// RegisterVehicle appends v to the fleet. Registration order is the
// matching order.
func (o *Orchestrator) RegisterVehicle(v *vehicle.Vehicle) error {
	if v == nil {
		return errors.New("delivery: nil vehicle")
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, f := range o.fleet {
		if f.ID() == v.ID() {
			return fmt.Errorf("delivery: vehicle %s already registered", v.ID())
		}
	}
	o.fleet = append(o.fleet, v)
	return nil
}

// UnregisterVehicle removes a vehicle that is not leased.
func (o *Orchestrator) UnregisterVehicle(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, f := range o.fleet {
		if f.ID() != id {
			continue
		}
		if owner := f.LeasedBy(); owner != "" {
			return fmt.Errorf("vehicle %s held by task %s: %w", id, owner, vehicle.ErrLeased)
		}
		o.fleet = append(o.fleet[:i:i], o.fleet[i+1:]...)
		return nil
	}
	return fmt.Errorf("delivery: unknown vehicle %s", id)
}

// Fleet returns the registered vehicles in order.
func (o *Orchestrator) Fleet() []*vehicle.Vehicle {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]*vehicle.Vehicle(nil), o.fleet...)
}

// Vehicle looks up a registered vehicle.
func (o *Orchestrator) Vehicle(id string) (*vehicle.Vehicle, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, v := range o.fleet {
		if v.ID() == id {
			return v, true
		}
	}
	return nil, false
}

// CreateTask checks and reserves products for a new pending task. The
// reservation is atomic with respect to other creators.
func (o *Orchestrator) CreateTask(products []model.Product, destination string) (*Task, error) {
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	o.selectMu.Lock()
	defer o.selectMu.Unlock()
	return o.createLocked(products, destination)
}

func (o *Orchestrator) createLocked(products []model.Product, destination string) (*Task, error) {
	task, err := NewTask(products, destination, o.clock.Now())
	if err != nil {
		return nil, err
	}
	if !o.stock.HasEnough(products) {
		return nil, ErrInsufficientInventory
	}
	reserved, err := o.stock.Reserve(task.id, products)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientInventory, err)
	}
	task.products = reserved
	task.weight = model.TotalWeight(reserved)

	o.mu.Lock()
	o.tasks = append(o.tasks, task)
	o.mu.Unlock()
	tasksCreated.Inc()
	o.logger.Infof("task %s created: %d products, %.2f kg to %s", task.id, len(reserved), task.weight, task.destination)
	o.publish(task, "")
	return task, nil
}

// PlanTask selects products from the stock and creates a task for them in
// one step under the selection lock.
func (o *Orchestrator) PlanTask(destination string, opts inventory.SelectOptions) (*Task, error) {
	o.selectMu.Lock()
	defer o.selectMu.Unlock()
	picked := o.stock.Select(opts)
	if len(picked) == 0 {
		return nil, ErrInsufficientInventory
	}
	return o.createLocked(picked, destination)
}

// AssignVehicle pre-assigns a registered vehicle to a pending task.
func (o *Orchestrator) AssignVehicle(task *Task, vehicleID string) error {
	v, ok := o.Vehicle(vehicleID)
	if !ok {
		return fmt.Errorf("delivery: unknown vehicle %s", vehicleID)
	}
	if err := task.AssignVehicle(v); err != nil {
		return err
	}
	o.publish(task, "")
	return nil
}

// MatchVehicle returns the first registered vehicle that is free and has
// room for requiredWeight, or nil.
func (o *Orchestrator) MatchVehicle(requiredWeight float64) *vehicle.Vehicle {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, v := range o.fleet {
		if eligible(v, requiredWeight) && v.LeasedBy() == "" {
			return v
		}
	}
	return nil
}

func eligible(v *vehicle.Vehicle, weight float64) bool {
	return !v.InTransit() && v.AvailableCapacity() >= weight
}

// acquireMatch scans the fleet first-fit and leases the first vehicle it
// can acquire for owner.
func (o *Orchestrator) acquireMatch(owner string, weight float64) *vehicle.Vehicle {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, v := range o.fleet {
		if !eligible(v, weight) {
			continue
		}
		if v.Acquire(owner) {
			if eligible(v, weight) {
				return v
			}
			v.Release(owner)
		}
	}
	return nil
}

// Cancel abandons a task that has not started executing and releases its
// reservation. A task held by a running Execute yields ErrInvalidTransition.
func (o *Orchestrator) Cancel(ctx context.Context, task *Task, reason string) error {
	if err := task.cancelIdle(reason); err != nil {
		return err
	}
	o.stock.Release(task.id)
	o.finish(ctx, task, logging.Cancelled, task.Vehicle())
	return nil
}

// Execute runs task: it leases a vehicle (matching one when none is
// assigned), commits the reservation, then loads, transports, unloads and
// marks the task delivered. A pre-assigned vehicle that is no longer
// eligible yields ErrVehicleIneligible and the task stays Assigned.
func (o *Orchestrator) Execute(ctx context.Context, task *Task) error {
	if err := task.claim(); err != nil {
		return err
	}
	defer task.unclaim()

	v, err := o.lease(task)
	if err != nil {
		o.logger.Warnf("task %s not executed: %v", task.id, err)
		return err
	}
	defer v.Release(task.id)
	activeDeliveries.Inc()
	defer activeDeliveries.Dec()

	committed, err := o.stock.Commit(task.id)
	if err != nil || len(committed) != len(task.products) {
		o.restock(task, committed)
		reason := fmt.Sprintf("committed %d of %d products", len(committed), len(task.products))
		if err != nil {
			reason = err.Error()
		}
		o.abort(ctx, task, v, reason)
		return fmt.Errorf("task %s: %s: %w", task.id, reason, ErrPartialCommit)
	}

	if err := task.StartLoading(); err != nil {
		o.restock(task, committed)
		return err
	}
	o.publish(task, "")
	res, err := v.Load(committed)
	if err != nil {
		o.restock(task, committed)
		o.abort(ctx, task, v, err.Error())
		return fmt.Errorf("task %s load: %w", task.id, err)
	}
	if len(res.Rejected) > 0 {
		back := make([]model.Product, 0, len(res.Rejected))
		for _, r := range res.Rejected {
			back = append(back, r.Product)
			o.logger.Warnf("task %s: %s rejected by %s: %s", task.id, r.Product.Name, v.ID(), r.Reason)
		}
		o.restock(task, back)
	}
	task.setLoaded(res.Accepted)
	if len(res.Accepted) == 0 {
		o.abort(ctx, task, v, ErrNothingLoaded.Error())
		return fmt.Errorf("task %s: %w", task.id, ErrNothingLoaded)
	}

	if err := task.StartTransit(); err != nil {
		o.abort(ctx, task, v, err.Error())
		return err
	}
	o.publish(task, "")
	trip, err := v.Transport(ctx, task.destination)
	if err != nil {
		o.abort(ctx, task, v, err.Error())
		return fmt.Errorf("task %s transport: %w", task.id, err)
	}
	o.recordTrip(v, trip)

	unloaded, err := v.Unload(ctx)
	if err != nil {
		o.abort(ctx, task, v, err.Error())
		return fmt.Errorf("task %s unload: %w", task.id, err)
	}
	if err := task.MarkDelivered(o.clock.Now()); err != nil {
		o.logger.Errorf("task %s not marked delivered, restocking cargo: %v", task.id, err)
		o.restock(task, unloaded)
		o.finish(ctx, task, logging.Failed, v)
		return err
	}
	o.finish(ctx, task, logging.Delivered, v)
	return nil
}

// lease returns the vehicle leased to task, matching and assigning one
// when needed.
func (o *Orchestrator) lease(task *Task) (*vehicle.Vehicle, error) {
	if v := task.Vehicle(); v != nil {
		if !v.Acquire(task.id) {
			return nil, fmt.Errorf("task %s: %s leased by %s: %w", task.id, v.ID(), v.LeasedBy(), ErrVehicleIneligible)
		}
		if !eligible(v, task.weight) {
			v.Release(task.id)
			return nil, fmt.Errorf("task %s: %s in transit or short of capacity: %w", task.id, v.ID(), ErrVehicleIneligible)
		}
		return v, nil
	}
	v := o.acquireMatch(task.id, task.weight)
	if v == nil {
		return nil, fmt.Errorf("task %s needs %.2f kg: %w", task.id, task.weight, ErrNoVehicle)
	}
	if err := task.AssignVehicle(v); err != nil {
		v.Release(task.id)
		return nil, err
	}
	o.publish(task, "")
	return v, nil
}

// abort cancels task and empties the vehicle, returning cargo to stock.
// Cargo is unloaded even if ctx is already cancelled. The log records the
// task as failed.
func (o *Orchestrator) abort(ctx context.Context, task *Task, v *vehicle.Vehicle, reason string) {
	if err := task.Cancel(reason); err != nil {
		o.logger.Warnf("task %s cancel: %v", task.id, err)
	}
	o.stock.Release(task.id)
	if len(v.Cargo()) > 0 {
		cargo, err := v.Unload(context.WithoutCancel(ctx))
		if err != nil {
			o.logger.Errorf("task %s: unloading %s after cancel: %v", task.id, v.ID(), err)
		} else {
			o.restock(task, cargo)
		}
	}
	o.logger.Warnf("task %s cancelled: %s", task.id, reason)
	if ctx.Err() == nil {
		monitoring.CaptureException(fmt.Errorf("task %s aborted: %s", task.id, reason), map[string]string{
			"destination": task.destination,
			"vehicle_id":  v.ID(),
		})
	}
	o.finish(ctx, task, logging.Failed, v)
}

// restock returns units to the stock and logs any that no longer fit.
func (o *Orchestrator) restock(task *Task, units []model.Product) {
	if len(units) == 0 {
		return
	}
	if added := o.stock.Add(units...); len(added) != len(units) {
		o.logger.Warnf("task %s: %d of %d units could not be restocked", task.id, len(units)-len(added), len(units))
	}
}

func (o *Orchestrator) finish(ctx context.Context, task *Task, outcome logging.Outcome, v *vehicle.Vehicle) {
	now := o.clock.Now()
	view := task.View()
	rec := logging.Record{
		Timestamp:   time.Now(),
		SimHour:     now,
		TaskID:      task.id,
		Destination: task.destination,
		Outcome:     outcome,
		Products:    len(task.products),
		WeightKG:    task.weight,
		Reason:      view.Reason,
		Categories:  make(map[string]int, len(view.Categories)),
	}
	for c, n := range view.Categories {
		rec.Categories[string(c)] = n
	}
	kind := ""
	if v != nil {
		rec.VehicleID = v.ID()
		kind = string(v.Kind())
		rec.VehicleKind = kind
	}
	if outcome == logging.Delivered {
		rec.Products = len(task.Loaded())
		rec.WeightKG = model.TotalWeight(task.Loaded())
		rec.DurationHours = view.TotalHours
		deliveryDuration.WithLabelValues(kind).Observe(view.TotalHours)
		o.logger.Infof("task %s delivered to %s by %s in %.2f h", task.id, task.destination, rec.VehicleID, view.TotalHours)
	}
	deliveriesTotal.WithLabelValues(string(outcome), kind).Inc()
	if err := o.logStore().Append(context.WithoutCancel(ctx), rec); err != nil {
		o.logger.Errorf("delivery log append: %v", err)
	}
	if err := o.sink.RecordDelivery(metrics.DeliveryResult{
		TaskID:        rec.TaskID,
		Destination:   rec.Destination,
		VehicleID:     rec.VehicleID,
		VehicleKind:   kind,
		Outcome:       string(outcome),
		Products:      rec.Products,
		WeightKG:      rec.WeightKG,
		DurationHours: rec.DurationHours,
		SimHour:       now,
		Time:          rec.Timestamp,
	}); err != nil {
		o.logger.Errorf("metrics sink: %v", err)
	}
	o.publish(task, rec.Reason)
}

func (o *Orchestrator) recordTrip(v *vehicle.Vehicle, trip vehicle.Trip) {
	if o.bus != nil {
		o.bus.Publish(events.VehicleEvent{
			VehicleID:   v.ID(),
			Kind:        string(v.Kind()),
			From:        trip.From,
			To:          trip.To,
			LoadKG:      trip.LoadKG,
			TravelHours: trip.Hours,
		})
	}
	if tr, ok := o.sink.(metrics.TripRecorder); ok {
		if err := tr.RecordTrip(metrics.TripEvent{
			VehicleID:   v.ID(),
			Kind:        string(v.Kind()),
			From:        trip.From,
			To:          trip.To,
			LoadKG:      trip.LoadKG,
			TravelHours: trip.Hours,
			Time:        time.Now(),
		}); err != nil {
			o.logger.Errorf("metrics sink: %v", err)
		}
	}
}

func (o *Orchestrator) publish(task *Task, reason string) {
	if o.bus == nil {
		return
	}
	view := task.View()
	ev := events.TaskEvent{
		TaskID:        view.ID,
		Destination:   view.Destination,
		VehicleID:     view.VehicleID,
		Status:        view.Status,
		Reason:        reason,
		Products:      len(view.Products),
		WeightKG:      view.WeightKG,
		SimHour:       o.clock.Now(),
		DurationHours: view.TotalHours,
	}
	if v := task.Vehicle(); v != nil {
		ev.VehicleKind = string(v.Kind())
	}
	o.bus.Publish(ev)
}
