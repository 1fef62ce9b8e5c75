package delivery

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kilianp07/logisim/core/model"
	"github.com/kilianp07/logisim/core/vehicle"
)

// Status is the task state.
type Status int

const (
	Pending Status = iota
	Assigned
	Loading
	InTransit
	Delivered
	Cancelled
)

var statusNames = [...]string{"pending", "assigned", "loading", "in_transit", "delivered", "cancelled"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool { return s == Delivered || s == Cancelled }

// Task binds a destination, a fixed product list and at most one vehicle.
type Task struct {
	id          string
	destination string
	products    []model.Product
	weight      float64
	createdAt   float64

	mu          sync.RWMutex
	status      Status
	vehicle     *vehicle.Vehicle
	loaded      []model.Product
	completedAt float64
	reason      string
	executing   bool
}

// NewTask creates a pending task. The product slice is copied.
func NewTask(products []model.Product, destination string, createdAt float64) (*Task, error) {
	if len(products) == 0 {
		return nil, ErrNoProducts
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, ErrBlankDestination
	}
	ps := append([]model.Product(nil), products...)
	return &Task{
		id:          uuid.NewString(),
		destination: destination,
		products:    ps,
		weight:      model.TotalWeight(ps),
		createdAt:   createdAt,
		status:      Pending,
	}, nil
}

func (t *Task) ID() string          { return t.id }
func (t *Task) Destination() string { return t.destination }
func (t *Task) CreatedAt() float64  { return t.createdAt }

// Weight is the total product weight.
func (t *Task) Weight() float64 { return t.weight }

// Products returns a copy of the product list.
func (t *Task) Products() []model.Product { return append([]model.Product(nil), t.products...) }

// CategorySummary counts products per category.
func (t *Task) CategorySummary() map[model.Category]int { return model.CategorySummary(t.products) }

func (t *Task) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Vehicle returns the assigned vehicle, nil when unassigned.
func (t *Task) Vehicle() *vehicle.Vehicle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.vehicle
}

// Loaded returns the units the vehicle accepted.
func (t *Task) Loaded() []model.Product {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]model.Product(nil), t.loaded...)
}

// Reason returns the cancellation reason.
func (t *Task) Reason() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.reason
}

// CompletedAt returns the delivery hour once delivered.
func (t *Task) CompletedAt() (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.completedAt, t.status == Delivered
}

// TotalTime is completedAt - createdAt, defined only once delivered.
func (t *Task) TotalTime() (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.status != Delivered {
		return 0, false
	}
	return t.completedAt - t.createdAt, true
}

func (t *Task) transition(from, to Status) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transitionLocked(from, to)
}

func (t *Task) transitionLocked(from, to Status) error {
	if t.status.Terminal() {
		return fmt.Errorf("task %s is %s: %w", t.id, t.status, ErrTerminal)
	}
	if t.status != from {
		return fmt.Errorf("task %s %s -> %s: %w", t.id, t.status, to, ErrInvalidTransition)
	}
	t.status = to
	return nil
}

// AssignVehicle moves Pending to Assigned. The vehicle must have room for
// the whole task.
func (t *Task) AssignVehicle(v *vehicle.Vehicle) error {
	if v == nil {
		return fmt.Errorf("task %s: nil vehicle: %w", t.id, ErrVehicleIneligible)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == Pending && v.AvailableCapacity() < t.weight {
		return fmt.Errorf("task %s needs %.2f kg, %s has %.2f kg: %w",
			t.id, t.weight, v.ID(), v.AvailableCapacity(), ErrVehicleIneligible)
	}
	if err := t.transitionLocked(Pending, Assigned); err != nil {
		return err
	}
	t.vehicle = v
	return nil
}

// StartLoading moves Assigned to Loading.
func (t *Task) StartLoading() error { return t.transition(Assigned, Loading) }

// StartTransit moves Loading to InTransit.
func (t *Task) StartTransit() error { return t.transition(Loading, InTransit) }

// MarkDelivered moves InTransit to Delivered and records the hour.
func (t *Task) MarkDelivered(at float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.transitionLocked(InTransit, Delivered); err != nil {
		return err
	}
	t.completedAt = at
	return nil
}

// Cancel moves any non-terminal task to Cancelled. It does not touch the
// vehicle cargo.
func (t *Task) Cancel(reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Terminal() {
		return fmt.Errorf("task %s is %s: %w", t.id, t.status, ErrTerminal)
	}
	t.status = Cancelled
	t.reason = reason
	return nil
}

// claim reserves the task for a single Execute call.
func (t *Task) claim() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.status.Terminal():
		return fmt.Errorf("task %s is %s: %w", t.id, t.status, ErrTerminal)
	case t.status != Pending && t.status != Assigned:
		return fmt.Errorf("task %s is %s: %w", t.id, t.status, ErrInvalidTransition)
	case t.executing:
		return fmt.Errorf("task %s is already executing: %w", t.id, ErrInvalidTransition)
	}
	t.executing = true
	return nil
}

func (t *Task) unclaim() {
	t.mu.Lock()
	t.executing = false
	t.mu.Unlock()
}

// cancelIdle cancels a Pending or Assigned task that no Execute call holds.
func (t *Task) cancelIdle(reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case t.status.Terminal():
		return fmt.Errorf("task %s is %s: %w", t.id, t.status, ErrTerminal)
	case t.executing || (t.status != Pending && t.status != Assigned):
		return fmt.Errorf("task %s is %s and executing: %w", t.id, t.status, ErrInvalidTransition)
	}
	t.status = Cancelled
	t.reason = reason
	return nil
}

func (t *Task) setLoaded(ps []model.Product) {
	t.mu.Lock()
	t.loaded = append([]model.Product(nil), ps...)
	t.mu.Unlock()
}

// View is a read-only snapshot of a task.
type View struct {
	ID          string                 `json:"id"`
	Destination string                 `json:"destination"`
	Status      string                 `json:"status"`
	Products    []model.Product        `json:"products"`
	WeightKG    float64                `json:"weight_kg"`
	Categories  map[model.Category]int `json:"categories"`
	VehicleID   string                 `json:"vehicle_id,omitempty"`
	CreatedAt   float64                `json:"created_at"`
	CompletedAt float64                `json:"completed_at,omitempty"`
	TotalHours  float64                `json:"total_hours,omitempty"`
	Reason      string                 `json:"reason,omitempty"`
}

// View returns a snapshot.
func (t *Task) View() View {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v := View{
		ID:          t.id,
		Destination: t.destination,
		Status:      t.status.String(),
		Products:    append([]model.Product(nil), t.products...),
		WeightKG:    t.weight,
		Categories:  model.CategorySummary(t.products),
		CreatedAt:   t.createdAt,
		Reason:      t.reason,
	}
	if t.vehicle != nil {
		v.VehicleID = t.vehicle.ID()
	}
	if t.status == Delivered {
		v.CompletedAt = t.completedAt
		v.TotalHours = t.completedAt - t.createdAt
	}
	return v
}
