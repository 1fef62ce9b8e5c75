package replenish

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilianp07/logisim/core/events"
	"github.com/kilianp07/logisim/core/inventory"
	"github.com/kilianp07/logisim/core/logger"
	"github.com/kilianp07/logisim/core/simclock"
	"github.com/kilianp07/logisim/internal/eventbus"
)

// Stocker is the part of the warehouse the scheduler drives.
type Stocker interface {
	Name() string
	CurrentLoad() float64
	Fill(target float64) inventory.FillResult
}

// Clock is the simulated time source the scheduler follows.
type Clock interface {
	Now() float64
	Subscribe() <-chan simclock.Tick
	Unsubscribe(<-chan simclock.Tick)
}

// Phase is the scheduler position in the daily cycle.
type Phase string

const (
	Awake           Phase = "awake"
	NightWindowOpen Phase = "night_window_open"
	Refilling       Phase = "refilling"
)

// State is the replenishment bookkeeping.
type State struct {
	ReferenceLoad     float64
	RefilledThisCycle bool
	LastOpenDay       int
	LastCloseDay      int
}

// Scheduler tracks consumption between window boundaries and refills the
// stock once per day.
type Scheduler struct {
	cfg   Config
	stock Stocker
	bus   eventbus.EventBus
	log   logger.Logger

	mu    sync.Mutex
	state State
	// refilling is read without mu so Phase sees a Fill in progress.
	refilling atomic.Bool
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(s *Scheduler) { s.log = logger.OrNop(l) } }

// WithBus publishes a RefillEvent at every boundary.
func WithBus(b eventbus.EventBus) Option { return func(s *Scheduler) { s.bus = b } }

// WithBaseline overrides the initial reference load, which otherwise is the
// stock load at construction.
func WithBaseline(kg float64) Option { return func(s *Scheduler) { s.state.ReferenceLoad = kg } }

// New creates a scheduler for stock. cfg is defaulted and validated.
func New(cfg Config, stock Stocker, opts ...Option) (*Scheduler, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{
		cfg:   cfg,
		stock: stock,
		log:   logger.Nop{},
		state: State{ReferenceLoad: stock.CurrentLoad()},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// State returns a copy of the bookkeeping.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Phase reports the cycle position at the given simulated hour.
func (s *Scheduler) Phase(hours float64) Phase {
	if s.refilling.Load() {
		return Refilling
	}
	if s.inWindow(simclock.HourOfDay(hours)) {
		return NightWindowOpen
	}
	return Awake
}

func (s *Scheduler) inWindow(hod float64) bool {
	return hod >= s.cfg.NightStartHour || hod < s.cfg.NightEndHour
}

// Observe processes a time sample and returns the boundary events it
// triggered, in order. Calling it again with the same or an earlier day has
// no effect for boundaries already handled.
func (s *Scheduler) Observe(hours float64) []events.RefillEvent {
	day := simclock.DayOf(hours)
	hod := simclock.HourOfDay(hours)

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.RefillEvent
	if hod >= s.cfg.NightEndHour && s.state.LastCloseDay < day {
		out = append(out, s.closeLocked(day, hours))
	}
	if hod >= s.cfg.NightStartHour && s.state.LastOpenDay < day {
		out = append(out, s.openLocked(day, hours))
	}
	for _, ev := range out {
		if s.bus != nil {
			s.bus.Publish(ev)
		}
	}
	return out
}

func (s *Scheduler) openLocked(day int, hours float64) events.RefillEvent {
	load := s.stock.CurrentLoad()
	s.state.LastOpenDay = day
	s.state.ReferenceLoad = load
	s.state.RefilledThisCycle = false
	s.log.Infof("night window opened day %d: reference load %.2f kg", day, load)
	return events.RefillEvent{
		Warehouse:   s.stock.Name(),
		Phase:       events.WindowOpened,
		Day:         day,
		SimHour:     hours,
		ReferenceKG: load,
		LoadKG:      load,
	}
}

func (s *Scheduler) closeLocked(day int, hours float64) events.RefillEvent {
	s.state.LastCloseDay = day
	ref := s.state.ReferenceLoad
	load := s.stock.CurrentLoad()
	ev := events.RefillEvent{
		Warehouse:   s.stock.Name(),
		Phase:       events.WindowClosed,
		Day:         day,
		SimHour:     hours,
		ReferenceKG: ref,
		ConsumedKG:  ref - load,
	}
	if ev.ConsumedKG > 0 {
		s.refilling.Store(true)
		res := s.stock.Fill(ev.ConsumedKG)
		s.refilling.Store(false)
		ev.AddedKG = res.AddedWeight
		ev.Units = len(res.Added)
		s.state.RefilledThisCycle = true
		refillsTotal.Inc()
		refillWeight.Add(res.AddedWeight)
		s.log.Infof("night window closed day %d: consumed %.2f kg, refilled %.2f kg (%d units)",
			day, ev.ConsumedKG, res.AddedWeight, len(res.Added))
	} else {
		skippedCycles.Inc()
		s.log.Infof("night window closed day %d: nothing consumed (%.2f kg), no refill", day, ev.ConsumedKG)
	}
	ev.LoadKG = s.stock.CurrentLoad()
	s.state.ReferenceLoad = ev.LoadKG
	return ev
}

// Run follows clock until ctx is done or the clock stops. Besides each tick
// it re-samples Now every poll interval so a dropped tick cannot hide a
// boundary.
func (s *Scheduler) Run(ctx context.Context, clock Clock) error {
	ticks := clock.Subscribe()
	defer clock.Unsubscribe(ticks)
	poll := time.NewTicker(time.Duration(s.cfg.PollIntervalMS) * time.Millisecond)
	defer poll.Stop()
	s.Observe(clock.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t, ok := <-ticks:
			if !ok {
				s.Observe(clock.Now())
				return nil
			}
			s.Observe(t.Hours)
		case <-poll.C:
			s.Observe(clock.Now())
		}
	}
}
