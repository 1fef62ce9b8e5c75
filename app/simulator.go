package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/logisim/config"
	"github.com/kilianp07/logisim/core/delivery"
	"github.com/kilianp07/logisim/core/inventory"
	"github.com/kilianp07/logisim/core/logger"
	"github.com/kilianp07/logisim/core/model"
	"github.com/kilianp07/logisim/core/monitoring"
	"github.com/kilianp07/logisim/core/simclock"
	"github.com/kilianp07/logisim/core/vehicle"
)

// Clock is the simulated time the driver paces itself on.
type Clock interface {
	Now() float64
	Sleep(ctx context.Context, hours float64) error
	WaitUntil(ctx context.Context, hours float64) error
}

// Mode is the kind of forane run scheduled for a weekday.
type Mode string

const (
	ModeGround Mode = "ground"
	ModeAir    Mode = "air"
	ModeNone   Mode = "none"
)

// localLeadHours separates the forane dispatch from the local round.
const localLeadHours = 2.0

// local targets are drawn between these shares of the truck capacity
const (
	localMinShare   = 0.5
	localShareRange = 0.4
)

// DayReport summarises one simulated day.
type DayReport struct {
	Day             int
	Weekday         string
	Mode            Mode
	ForaneDelivered int
	LocalDelivered  int
	Failed          int
	Skipped         int
}

type tally struct {
	forane, local, failed, skipped atomic.Int32
}

// Simulator drives the weekly plan: forane runs to the configured cities on
// ground or air days, local rounds in the hub every day.
type Simulator struct {
	cfg   config.SimulationConfig
	orch  *delivery.Orchestrator
	clock Clock
	fleet Fleet
	rand  *model.Factory
	log   logger.Logger
	onDay func(DayReport)
}

// SimulatorOption customises a Simulator.
type SimulatorOption func(*Simulator)

// WithDayHook registers fn to run after every simulated day.
func WithDayHook(fn func(DayReport)) SimulatorOption {
	return func(s *Simulator) { s.onDay = fn }
}

// NewSimulator wires the driver. rnd supplies the local target draws; nil
// seeds one from the clock.
func NewSimulator(cfg config.SimulationConfig, orch *delivery.Orchestrator, clock Clock, fleet Fleet, rnd *model.Factory, log logger.Logger, opts ...SimulatorOption) (*Simulator, error) {
	if orch == nil || clock == nil {
		return nil, errors.New("simulator: orchestrator and clock are required")
	}
	if rnd == nil {
		rnd = model.NewFactory(0)
	}
	s := &Simulator{cfg: cfg, orch: orch, clock: clock, fleet: fleet, rand: rnd, log: logger.OrNop(log)}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// ModeFor returns the forane mode of weekday.
func (s *Simulator) ModeFor(weekday string) Mode {
	for _, d := range s.cfg.GroundDays {
		if strings.EqualFold(d, weekday) {
			return ModeGround
		}
	}
	for _, d := range s.cfg.AirDays {
		if strings.EqualFold(d, weekday) {
			return ModeAir
		}
	}
	return ModeNone
}

// Run simulates days consecutive days; days <= 0 runs until ctx is done.
func (s *Simulator) Run(ctx context.Context, days int) ([]DayReport, error) {
	var reports []DayReport
	for i := 0; days <= 0 || i < days; i++ {
		rep, err := s.RunDay(ctx)
		if err != nil {
			return reports, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// RunDay runs the plan of the current simulated day then waits for the
// next day boundary.
func (s *Simulator) RunDay(ctx context.Context) (DayReport, error) {
	day := simclock.DayOf(s.clock.Now())
	rep := DayReport{Day: day, Weekday: simclock.WeekdayOf(day)}
	rep.Mode = s.ModeFor(rep.Weekday)
	s.log.Infof("%s: forane mode %s", simclock.At(s.clock.Now()), rep.Mode)

	var t tally
	err := s.foraneRun(ctx, rep.Mode, &t)
	if err == nil {
		err = s.clock.Sleep(ctx, localLeadHours)
	}
	if err == nil {
		err = s.localRun(ctx, &t)
	}
	if err == nil {
		err = s.clock.WaitUntil(ctx, float64(day*simclock.HoursPerDay))
	}
	rep.ForaneDelivered = int(t.forane.Load())
	rep.LocalDelivered = int(t.local.Load())
	rep.Failed = int(t.failed.Load())
	rep.Skipped = int(t.skipped.Load())
	if err != nil {
		return rep, err
	}
	s.log.Infof("day %d done: %d forane, %d local, %d failed, %d skipped",
		rep.Day, rep.ForaneDelivered, rep.LocalDelivered, rep.Failed, rep.Skipped)
	if s.onDay != nil {
		s.onDay(rep)
	}
	return rep, nil
}

func (s *Simulator) foraneRun(ctx context.Context, mode Mode, t *tally) error {
	var pool []*vehicle.Vehicle
	base := s.cfg.Hub
	switch mode {
	case ModeGround:
		pool = s.fleet.Ground
	case ModeAir:
		pool = s.fleet.Air
		base = s.cfg.Airport
	default:
		return nil
	}
	if len(pool) == 0 {
		s.log.Warnf("no %s vehicles for forane run", mode)
		t.skipped.Add(int32(len(s.cfg.ForaneCities)))
		return nil
	}

	// cities are spread round-robin; each vehicle serves its share in order
	work := make(map[*vehicle.Vehicle][]string, len(pool))
	for i, city := range s.cfg.ForaneCities {
		v := pool[i%len(pool)]
		work[v] = append(work[v], city)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism())
	for v, cities := range work {
		g.Go(func() error {
			defer monitoring.Recover()
			for _, city := range cities {
				if err := s.foraneDelivery(gctx, v, city, base, t); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Simulator) parallelism() int {
	if s.cfg.Parallelism > 0 {
		return s.cfg.Parallelism
	}
	return -1
}

func (s *Simulator) foraneDelivery(ctx context.Context, v *vehicle.Vehicle, city, base string, t *tally) error {
	if v.InTransit() {
		s.log.Warnf("vehicle %s for %s still in transit", v.ID(), city)
		t.skipped.Add(1)
		return nil
	}
	if err := v.SetLocation(base); err != nil {
		s.log.Warnf("vehicle %s: %v", v.ID(), err)
		t.skipped.Add(1)
		return nil
	}
	ok, err := s.deliver(ctx, v, city, v.MaxCapacity(), t)
	if err != nil || !ok {
		return err
	}
	t.forane.Add(1)
	if err := s.clock.Sleep(ctx, s.cfg.ReturnHours); err != nil {
		return err
	}
	if err := v.SetLocation(base); err != nil {
		s.log.Warnf("vehicle %s return: %v", v.ID(), err)
	}
	return nil
}

func (s *Simulator) localRun(ctx context.Context, t *tally) error {
	if len(s.fleet.Local) == 0 || s.cfg.LocalDeliveriesPerTruck == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, v := range s.fleet.Local {
		g.Go(func() error {
			defer monitoring.Recover()
			for i := 0; i < s.cfg.LocalDeliveriesPerTruck; i++ {
				target := v.MaxCapacity() * (localMinShare + s.rand.Float64()*localShareRange)
				ok, err := s.deliver(gctx, v, s.cfg.Hub, target, t)
				if err != nil {
					return err
				}
				if ok {
					t.local.Add(1)
				}
				if err := s.clock.Sleep(gctx, s.cfg.LocalPauseHours); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// deliver plans a task for v towards dest and executes it. Delivery
// failures are logged and counted; only context errors are returned.
func (s *Simulator) deliver(ctx context.Context, v *vehicle.Vehicle, dest string, target float64, t *tally) (bool, error) {
	task, err := s.orch.PlanTask(dest, inventory.SelectOptions{TargetWeight: target, Eligible: v.CanCarry})
	if err != nil {
		s.log.Warnf("no products for %s via %s: %v", dest, v.ID(), err)
		t.skipped.Add(1)
		return false, nil
	}
	if err := s.orch.AssignVehicle(task, v.ID()); err != nil {
		s.log.Warnf("assign %s to task %s: %v", v.ID(), task.ID(), err)
		s.cancel(ctx, task, err)
		t.failed.Add(1)
		return false, nil
	}
	if err := s.orch.Execute(ctx, task); err != nil {
		s.cancel(ctx, task, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		s.log.Warnf("task %s to %s failed: %v", task.ID(), dest, err)
		t.failed.Add(1)
		return false, nil
	}
	return true, nil
}

// cancel releases a task left non-terminal by a failed step.
func (s *Simulator) cancel(ctx context.Context, task *delivery.Task, cause error) {
	if task.Status().Terminal() {
		return
	}
	if err := s.orch.Cancel(context.WithoutCancel(ctx), task, cause.Error()); err != nil {
		s.log.Warnf("cancel task %s: %v", task.ID(), err)
	}
}

func (r DayReport) String() string {
	return fmt.Sprintf("Day %d (%s) %s: forane=%d local=%d failed=%d skipped=%d",
		r.Day, r.Weekday, r.Mode, r.ForaneDelivered, r.LocalDelivered, r.Failed, r.Skipped)
}
