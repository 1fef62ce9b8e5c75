package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/logisim/core/delivery/logging"
	"github.com/kilianp07/logisim/core/events"
	"github.com/kilianp07/logisim/core/inventory"
	"github.com/kilianp07/logisim/core/model"
	"github.com/kilianp07/logisim/core/vehicle"
	"github.com/kilianp07/logisim/internal/eventbus"
)

type fixedClock struct {
	mu sync.Mutex
	h  float64
}

func (c *fixedClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.h
}

func (c *fixedClock) set(h float64) {
	c.mu.Lock()
	c.h = h
	c.mu.Unlock()
}

func newWarehouse(t *testing.T, units ...model.Product) *inventory.Warehouse {
	t.Helper()
	w, err := inventory.New(10000, inventory.WithName(t.Name()))
	require.NoError(t, err)
	require.Len(t, w.Add(units...), len(units))
	return w
}

func newOrchestrator(t *testing.T, stock Stock, clock Clock) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(stock, clock, nil, nil, nil)
	require.NoError(t, err)
	return o
}

func truck(t *testing.T, id string, kg float64, opts ...vehicle.Option) *vehicle.Vehicle {
	t.Helper()
	v, err := vehicle.NewTruck(id, kg, "GDL", opts...)
	require.NoError(t, err)
	return v
}

func TestCreateTaskValidation(t *testing.T) {
	w := newWarehouse(t, products(5)...)
	o := newOrchestrator(t, w, nil)
	_, err := o.CreateTask(nil, "SLP")
	assert.ErrorIs(t, err, ErrNoProducts)
	_, err = o.CreateTask(products(5), "")
	assert.ErrorIs(t, err, ErrBlankDestination)
	_, err = o.CreateTask(products(5, 5), "SLP")
	assert.ErrorIs(t, err, ErrInsufficientInventory)
	assert.Empty(t, o.AllTasks())
	assert.Zero(t, w.Reserved())
}

func TestConcurrentCreateTaskYieldsDisjointTasks(t *testing.T) {
	const n = 16
	var stock []model.Product
	for i := 0; i < n; i++ {
		stock = append(stock, model.NewProduct(model.Toys, "Monopoly", 2.5))
	}
	w := newWarehouse(t, stock...)
	o := newOrchestrator(t, w, nil)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.CreateTask([]model.Product{model.NewProduct(model.Toys, "Monopoly", 2.5)}, "SLP")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	tasks := o.AllTasks()
	require.Len(t, tasks, n)
	seen := map[string]bool{}
	for _, task := range tasks {
		for _, p := range task.Products() {
			assert.False(t, seen[p.ID], "unit %s in two tasks", p.ID)
			seen[p.ID] = true
		}
	}
	_, err := o.CreateTask([]model.Product{model.NewProduct(model.Toys, "Monopoly", 2.5)}, "SLP")
	assert.ErrorIs(t, err, ErrInsufficientInventory)
}

func TestMatchVehicleFirstFit(t *testing.T) {
	o := newOrchestrator(t, newWarehouse(t), nil)
	small := truck(t, "small", 50)
	mid := truck(t, "mid", 100)
	big := truck(t, "big", 200)
	for _, v := range []*vehicle.Vehicle{small, mid, big} {
		require.NoError(t, o.RegisterVehicle(v))
	}
	assert.Same(t, mid, o.MatchVehicle(80))
	assert.Same(t, small, o.MatchVehicle(10))
	require.True(t, mid.Acquire("other"))
	assert.Same(t, big, o.MatchVehicle(80))
	assert.Nil(t, o.MatchVehicle(500))
	assert.Error(t, o.RegisterVehicle(truck(t, "mid", 10)))
}

func TestExecuteDeliversTask(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	units := products(10, 20)
	w := newWarehouse(t, append(units, products(30)...)...)
	clock := &fixedClock{h: 3}
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()
	o, err := NewOrchestrator(w, clock, nil, bus, nil)
	require.NoError(t, err)
	v := truck(t, "t1", 100, vehicle.WithSleeper(vehicle.SleeperFunc(func(ctx context.Context, h float64) error {
		clock.set(clock.Now() + h)
		return nil
	})))
	require.NoError(t, o.RegisterVehicle(v))

	task, err := o.CreateTask(units, "City A")
	require.NoError(t, err)
	require.NoError(t, o.Execute(context.Background(), task))

	assert.Equal(t, Delivered, task.Status())
	assert.Equal(t, "City A", v.Location())
	assert.Zero(t, v.CurrentLoad())
	assert.Empty(t, v.LeasedBy())
	assert.InDelta(t, 30, w.CurrentLoad(), 1e-9)
	assert.Len(t, task.Loaded(), 2)
	total, ok := task.TotalTime()
	require.True(t, ok)
	assert.Greater(t, total, 0.0)

	assert.Len(t, o.CompletedTasks(), 1)
	assert.Empty(t, o.PendingTasks())
	counts, err := o.DeliveriesByDestination(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts["City A"])
	assert.Equal(t, 1.0, testutil.ToFloat64(deliveriesTotal.WithLabelValues("delivered", "ground")))

	var statuses []string
	var trip bool
	timeout := time.After(time.Second)
	for len(statuses) < 5 || !trip {
		select {
		case ev := <-sub:
			switch e := ev.(type) {
			case events.TaskEvent:
				statuses = append(statuses, e.Status)
			case events.VehicleEvent:
				trip = true
			}
		case <-timeout:
			t.Fatalf("missing events, got %v trip=%v", statuses, trip)
		}
	}
	assert.Equal(t, []string{"pending", "assigned", "loading", "in_transit", "delivered"}, statuses)
}

func TestExecuteAirRestocksIneligibleItems(t *testing.T) {
	heavy := model.NewProduct(model.Furniture, "Wardrobe", 180)
	light := model.NewProduct(model.Furniture, "Wooden Chair", 8)
	w := newWarehouse(t, heavy, light)
	o := newOrchestrator(t, w, nil)
	plane, err := vehicle.NewAirplane("a1", 1000, "GDL Airport")
	require.NoError(t, err)
	require.NoError(t, o.RegisterVehicle(plane))

	task, err := o.CreateTask([]model.Product{heavy, light}, "SLP")
	require.NoError(t, err)
	require.NoError(t, o.Execute(context.Background(), task))
	loaded := task.Loaded()
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Same(light))
	assert.Len(t, w.List(model.Furniture, 0), 1, "rejected unit goes back to stock")
	assert.InDelta(t, 180, w.CurrentLoad(), 1e-9)
}

func TestExecuteCancelsWhenNothingLoads(t *testing.T) {
	heavy := model.NewProduct(model.Furniture, "Wardrobe", 180)
	w := newWarehouse(t, heavy)
	o := newOrchestrator(t, w, nil)
	plane, _ := vehicle.NewAirplane("a1", 1000, "GDL Airport")
	require.NoError(t, o.RegisterVehicle(plane))
	task, err := o.CreateTask([]model.Product{heavy}, "ZAC")
	require.NoError(t, err)
	err = o.Execute(context.Background(), task)
	assert.ErrorIs(t, err, ErrNothingLoaded)
	assert.Equal(t, Cancelled, task.Status())
	assert.InDelta(t, 180, w.CurrentLoad(), 1e-9)
	assert.Empty(t, plane.LeasedBy())
}

type shortStock struct {
	*inventory.Warehouse
}

func (s shortStock) Commit(holder string) ([]model.Product, error) {
	got, err := s.Warehouse.Commit(holder)
	if len(got) > 0 {
		got = got[:len(got)-1]
	}
	return got, err
}

func TestExecutePartialCommitCancels(t *testing.T) {
	units := products(5, 6)
	w := newWarehouse(t, units...)
	o := newOrchestrator(t, shortStock{w}, nil)
	v := truck(t, "t1", 100)
	require.NoError(t, o.RegisterVehicle(v))
	task, err := o.CreateTask(units, "SLP")
	require.NoError(t, err)

	err = o.Execute(context.Background(), task)
	assert.ErrorIs(t, err, ErrPartialCommit)
	assert.Equal(t, Cancelled, task.Status())
	assert.Empty(t, v.Cargo())
	assert.Empty(t, v.LeasedBy())
	assert.Len(t, o.CancelledTasks(), 1)
}

func TestExecuteRevalidatesPreassignedVehicle(t *testing.T) {
	units := products(40)
	w := newWarehouse(t, units...)
	o := newOrchestrator(t, w, nil)
	v := truck(t, "t1", 50)
	require.NoError(t, o.RegisterVehicle(v))
	task, err := o.CreateTask(units, "SLP")
	require.NoError(t, err)
	require.NoError(t, o.AssignVehicle(task, "t1"))

	// another pipeline holds the vehicle
	require.True(t, v.Acquire("other"))
	err = o.Execute(context.Background(), task)
	assert.ErrorIs(t, err, ErrVehicleIneligible)
	assert.Equal(t, Assigned, task.Status())
	v.Release("other")

	// capacity consumed meanwhile
	_, err = v.Load(products(20))
	require.NoError(t, err)
	err = o.Execute(context.Background(), task)
	assert.ErrorIs(t, err, ErrVehicleIneligible)
	assert.Equal(t, Assigned, task.Status())
	assert.Equal(t, 1, w.Reserved(), "reservation is kept for a retry")

	_, err = v.Unload(context.Background())
	require.NoError(t, err)
	require.NoError(t, o.Execute(context.Background(), task))
	assert.Equal(t, Delivered, task.Status())
}

func TestExecuteWithoutVehicle(t *testing.T) {
	units := products(40)
	o := newOrchestrator(t, newWarehouse(t, units...), nil)
	require.NoError(t, o.RegisterVehicle(truck(t, "t1", 20)))
	task, err := o.CreateTask(units, "SLP")
	require.NoError(t, err)
	assert.ErrorIs(t, o.Execute(context.Background(), task), ErrNoVehicle)
	assert.Equal(t, Pending, task.Status())
}

func TestExecuteCancelledTransportUnloads(t *testing.T) {
	units := products(5)
	w := newWarehouse(t, units...)
	o := newOrchestrator(t, w, nil)
	blocking := vehicle.SleeperFunc(func(ctx context.Context, _ float64) error {
		if ctx.Done() == nil {
			return nil
		}
		<-ctx.Done()
		return ctx.Err()
	})
	v := truck(t, "t1", 100, vehicle.WithSleeper(blocking))
	require.NoError(t, o.RegisterVehicle(v))
	task, err := o.CreateTask(units, "SLP")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = o.Execute(ctx, task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, Cancelled, task.Status())
	assert.Empty(t, v.Cargo(), "cancelled task must not leave cargo behind")
	assert.Equal(t, "GDL", v.Location())
	assert.InDelta(t, 5, w.CurrentLoad(), 1e-9)
}

func TestExecuteTerminalTask(t *testing.T) {
	units := products(5)
	w := newWarehouse(t, units...)
	o := newOrchestrator(t, w, nil)
	task, err := o.CreateTask(units, "SLP")
	require.NoError(t, err)
	require.NoError(t, o.Cancel(context.Background(), task, "not needed"))
	assert.Zero(t, w.Reserved())
	assert.ErrorIs(t, o.Execute(context.Background(), task), ErrTerminal)
}

func TestExecuteAllRunsInParallel(t *testing.T) {
	const n = 4
	var stock []model.Product
	for i := 0; i < n*3; i++ {
		stock = append(stock, model.NewProduct(model.Office, "Whiteboard", 4))
	}
	w := newWarehouse(t, stock...)
	o := newOrchestrator(t, w, nil)
	sleeper := vehicle.SleeperFunc(func(ctx context.Context, _ float64) error {
		select {
		case <-time.After(5 * time.Millisecond):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	var tasks []*Task
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("t%d", i)
		require.NoError(t, o.RegisterVehicle(truck(t, id, 50, vehicle.WithSleeper(sleeper))))
		task, err := o.CreateTask(stock[i*3:(i+1)*3], fmt.Sprintf("City %c", 'A'+i))
		require.NoError(t, err)
		require.NoError(t, o.AssignVehicle(task, id))
		tasks = append(tasks, task)
	}
	errs := o.ExecuteAll(context.Background(), tasks, 0)
	assert.Empty(t, errs)
	assert.Len(t, o.CompletedTasks(), n)
	assert.Zero(t, w.CurrentLoad())
	stats, err := o.Stats(context.Background())
	require.NoError(t, err)
	assert.Len(t, stats, n)
}

func TestPlanTaskSelectsAndReserves(t *testing.T) {
	w, err := inventory.New(1000, inventory.WithFactory(model.NewFactory(3)))
	require.NoError(t, err)
	w.Fill(1000)
	o := newOrchestrator(t, w, nil)
	task, err := o.PlanTask("North Branch", inventory.SelectOptions{TargetWeight: 100})
	require.NoError(t, err)
	assert.LessOrEqual(t, task.Weight(), 100.0)
	assert.Equal(t, len(task.Products()), w.Reserved())

	empty := newOrchestrator(t, newWarehouse(t), nil)
	_, err = empty.PlanTask("North Branch", inventory.SelectOptions{TargetWeight: 100})
	assert.ErrorIs(t, err, ErrInsufficientInventory)
}

func TestUnregisterVehicle(t *testing.T) {
	o := newOrchestrator(t, newWarehouse(t), nil)
	v := truck(t, "t1", 50)
	require.NoError(t, o.RegisterVehicle(v))
	require.True(t, v.Acquire("task"))
	assert.ErrorIs(t, o.UnregisterVehicle("t1"), vehicle.ErrLeased)
	v.Release("task")
	require.NoError(t, o.UnregisterVehicle("t1"))
	assert.Empty(t, o.Fleet())
	assert.Error(t, o.UnregisterVehicle("t1"))
}

func TestSQLiteLogStoreBacksStats(t *testing.T) {
	store, err := logging.NewSQLiteStore(t.TempDir() + "/deliveries.db")
	require.NoError(t, err)
	units := products(5)
	o := newOrchestrator(t, newWarehouse(t, units...), nil)
	o.SetLogStore(store)
	defer func() { _ = o.Close() }()
	require.NoError(t, o.RegisterVehicle(truck(t, "t1", 50)))
	task, err := o.CreateTask(units, "SLP")
	require.NoError(t, err)
	require.NoError(t, o.Execute(context.Background(), task))
	recs, err := o.History(context.Background(), logging.Query{Destination: "SLP"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, logging.Delivered, recs[0].Outcome)
	assert.Equal(t, "t1", recs[0].VehicleID)
}

// gate blocks the first Sleep until opened and lets later calls through.
type gate struct {
	once    sync.Once
	entered chan struct{}
	open    chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}), open: make(chan struct{})}
}

func (g *gate) Sleep(ctx context.Context, _ float64) error {
	first := false
	g.once.Do(func() { first = true })
	if !first {
		return nil
	}
	close(g.entered)
	select {
	case <-g.open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestCancelRefusedWhileExecuting(t *testing.T) {
	units := products(4, 6)
	w := newWarehouse(t, units...)
	o := newOrchestrator(t, w, nil)
	g := newGate()
	v := truck(t, "t1", 100, vehicle.WithSleeper(g))
	require.NoError(t, o.RegisterVehicle(v))
	task, err := o.CreateTask(units, "SLP")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- o.Execute(context.Background(), task) }()
	select {
	case <-g.entered:
	case <-time.After(time.Second):
		t.Fatal("transport never started")
	}

	assert.ErrorIs(t, o.Cancel(context.Background(), task, "late"), ErrInvalidTransition)
	assert.ErrorIs(t, o.Execute(context.Background(), task), ErrInvalidTransition)
	assert.Equal(t, task.ID(), v.LeasedBy(), "second Execute must not drop the lease")
	close(g.open)
	require.NoError(t, <-done)

	assert.Equal(t, Delivered, task.Status())
	assert.Len(t, task.Loaded(), 2)
	assert.Zero(t, w.CurrentLoad())
	assert.Empty(t, v.LeasedBy())
	recs, err := o.History(context.Background(), logging.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, logging.Delivered, recs[0].Outcome)
	assert.InDelta(t, 10, recs[0].WeightKG, 1e-9)
}

func TestExecuteRestocksWhenTaskCancelledInTransit(t *testing.T) {
	units := products(4, 6)
	w := newWarehouse(t, units...)
	o := newOrchestrator(t, w, nil)
	g := newGate()
	v := truck(t, "t1", 100, vehicle.WithSleeper(g))
	require.NoError(t, o.RegisterVehicle(v))
	task, err := o.CreateTask(units, "SLP")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- o.Execute(context.Background(), task) }()
	<-g.entered
	require.NoError(t, task.Cancel("recalled"))
	close(g.open)

	assert.ErrorIs(t, <-done, ErrTerminal)
	assert.Empty(t, v.Cargo())
	assert.InDelta(t, 10, w.CurrentLoad(), 1e-9, "unloaded cargo goes back to stock")
	recs, err := o.History(context.Background(), logging.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, logging.Failed, recs[0].Outcome)
}

type tightStock struct {
	*inventory.Warehouse
	keep int
}

func (s tightStock) Add(units ...model.Product) []model.Product {
	if len(units) > s.keep {
		units = units[:s.keep]
	}
	return s.Warehouse.Add(units...)
}

func TestRestockShortfallIsDropped(t *testing.T) {
	heavy := model.NewProduct(model.Furniture, "Wardrobe", 180)
	heavier := model.NewProduct(model.Furniture, "Wardrobe", 180)
	light := model.NewProduct(model.Furniture, "Wooden Chair", 8)
	w := newWarehouse(t, heavy, heavier, light)
	o := newOrchestrator(t, tightStock{Warehouse: w, keep: 1}, nil)
	plane, err := vehicle.NewAirplane("a1", 1000, "GDL Airport")
	require.NoError(t, err)
	require.NoError(t, o.RegisterVehicle(plane))

	task, err := o.CreateTask([]model.Product{heavy, heavier, light}, "SLP")
	require.NoError(t, err)
	require.NoError(t, o.Execute(context.Background(), task))
	assert.Len(t, task.Loaded(), 1)
	assert.InDelta(t, 180, w.CurrentLoad(), 1e-9, "only one rejected unit fits back")
}
