package delivery

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/kilianp07/logisim/core/model"
	"github.com/kilianp07/logisim/core/vehicle"
)

func products(kgs ...float64) []model.Product {
	out := make([]model.Product, 0, len(kgs))
	for _, kg := range kgs {
		out = append(out, model.NewProduct(model.Sports, "Kettlebell", kg))
	}
	return out
}

func TestTaskLifecycle(t *testing.T) {
	task, err := NewTask(products(1, 2), "SLP", 5)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if _, err := uuid.Parse(task.ID()); err != nil {
		t.Fatalf("expected a full uuid id, got %q: %v", task.ID(), err)
	}
	if _, ok := task.TotalTime(); ok {
		t.Fatalf("total time must be undefined before delivery")
	}
	v, _ := vehicle.NewTruck("t1", 100, "GDL")
	steps := []func() error{
		func() error { return task.AssignVehicle(v) },
		task.StartLoading,
		task.StartTransit,
		func() error { return task.MarkDelivered(9.5) },
	}
	want := []Status{Assigned, Loading, InTransit, Delivered}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if task.Status() != want[i] {
			t.Fatalf("step %d: expected %s got %s", i, want[i], task.Status())
		}
	}
	if d, ok := task.TotalTime(); !ok || d != 4.5 {
		t.Fatalf("expected total time 4.5, got %v %v", d, ok)
	}
	if err := task.MarkDelivered(11); !errors.Is(err, ErrTerminal) {
		t.Fatalf("completedAt must be set once, got %v", err)
	}
	if err := task.Cancel("late"); !errors.Is(err, ErrTerminal) {
		t.Fatalf("expected ErrTerminal, got %v", err)
	}
	if at, _ := task.CompletedAt(); at != 9.5 {
		t.Fatalf("completedAt changed to %v", at)
	}
}

func TestTaskRejectsOutOfOrderTransitions(t *testing.T) {
	task, _ := NewTask(products(1), "ZAC", 0)
	if err := task.StartLoading(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := task.MarkDelivered(1); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := task.AssignVehicle(nil); !errors.Is(err, ErrVehicleIneligible) {
		t.Fatalf("expected ErrVehicleIneligible, got %v", err)
	}
}

func TestCancelFromEveryNonTerminalState(t *testing.T) {
	v, _ := vehicle.NewTruck("t1", 100, "GDL")
	advance := []func(*Task) error{
		func(*Task) error { return nil },
		func(tk *Task) error { return tk.AssignVehicle(v) },
		func(tk *Task) error { return tk.StartLoading() },
		func(tk *Task) error { return tk.StartTransit() },
	}
	for n := range advance {
		task, _ := NewTask(products(1), "AGS", 0)
		for i := 0; i <= n; i++ {
			if err := advance[i](task); err != nil {
				t.Fatalf("advance %d: %v", i, err)
			}
		}
		if err := task.Cancel("stop"); err != nil {
			t.Fatalf("cancel from %d: %v", n, err)
		}
		if task.Status() != Cancelled || task.Reason() != "stop" {
			t.Fatalf("unexpected state %s %q", task.Status(), task.Reason())
		}
		if err := task.StartLoading(); !errors.Is(err, ErrTerminal) {
			t.Fatalf("cancelled task must stay cancelled, got %v", err)
		}
	}
}

func TestTaskClaimIsExclusive(t *testing.T) {
	task, err := NewTask(products(1), "SLP", 0)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := task.claim(); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := task.claim(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second claim: got %v", err)
	}
	if err := task.cancelIdle("x"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel while claimed: got %v", err)
	}
	task.unclaim()
	if err := task.cancelIdle("x"); err != nil {
		t.Fatalf("cancel after unclaim: %v", err)
	}
	if err := task.claim(); !errors.Is(err, ErrTerminal) {
		t.Fatalf("claim cancelled task: got %v", err)
	}
}

func TestAssignVehicleRequiresCapacity(t *testing.T) {
	task, _ := NewTask(products(10, 20, 30), "SLP", 0)
	v, _ := vehicle.NewTruck("small", 50, "GDL")
	if err := task.AssignVehicle(v); !errors.Is(err, ErrVehicleIneligible) {
		t.Fatalf("expected ErrVehicleIneligible, got %v", err)
	}
	if task.Status() != Pending || task.Vehicle() != nil {
		t.Fatalf("task must stay pending and unassigned")
	}
}

func TestNewTaskValidation(t *testing.T) {
	if _, err := NewTask(nil, "SLP", 0); !errors.Is(err, ErrNoProducts) {
		t.Fatalf("expected ErrNoProducts, got %v", err)
	}
	if _, err := NewTask(products(1), "   ", 0); !errors.Is(err, ErrBlankDestination) {
		t.Fatalf("expected ErrBlankDestination, got %v", err)
	}
}

func TestTaskProductsAreImmutable(t *testing.T) {
	ps := products(1, 2)
	task, _ := NewTask(ps, "SLP", 0)
	ps[0].Name = "changed"
	got := task.Products()
	got[1].Name = "changed"
	for _, p := range task.Products() {
		if p.Name == "changed" {
			t.Fatalf("task products leaked")
		}
	}
	if task.CategorySummary()[model.Sports] != 2 {
		t.Fatalf("unexpected summary %v", task.CategorySummary())
	}
}

func TestStatusString(t *testing.T) {
	if InTransit.String() != "in_transit" || Status(42).String() != "status(42)" {
		t.Fatalf("unexpected names")
	}
}
