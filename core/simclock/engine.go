package simclock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilianp07/logisim/core/logger"
	"github.com/kilianp07/logisim/internal/eventbus"
)

var (
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("simclock: engine already started")
	// ErrInvalidScale is returned for a non-positive scale.
	ErrInvalidScale = errors.New("simclock: scale must be positive")
)

// Engine is the single writer of simulated time.
type Engine struct {
	scale time.Duration
	hours atomic.Int64
	bus   *eventbus.TypedBus[Tick]
	log   logger.Logger

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates an engine that advances one simulated hour every scale.
func New(scale time.Duration, log logger.Logger) (*Engine, error) {
	if scale <= 0 {
		return nil, ErrInvalidScale
	}
	return &Engine{
		scale: scale,
		bus:   eventbus.NewTypedWithBuffer[Tick](32),
		log:   logger.OrNop(log),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}, nil
}

// Start spawns the advancing goroutine. It exits when ctx is cancelled or
// Stop is called; either way the bus is closed and the time frozen.
func (e *Engine) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	go e.run(ctx)
	return nil
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	defer e.bus.Close()
	t := time.NewTicker(e.scale)
	defer t.Stop()
	e.log.Infof("simulated clock started at %s per hour", e.scale)
	for {
		select {
		case <-ctx.Done():
			e.log.Infof("simulated clock cancelled at hour %d", e.hours.Load())
			return
		case <-e.stop:
			e.log.Infof("simulated clock stopped at hour %d", e.hours.Load())
			return
		case <-t.C:
			h := e.hours.Add(1)
			tick := At(float64(h))
			e.log.Debugw("tick", map[string]any{"hour": h, "day": tick.Day})
			e.bus.Publish(tick)
		}
	}
}

// Stop halts advancement and waits for the goroutine to exit. Subsequent
// calls are no-ops.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
	if e.started.Load() {
		<-e.done
	}
}

// Done is closed once the advancing goroutine has exited.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Now returns the current simulated hour.
func (e *Engine) Now() float64 { return float64(e.hours.Load()) }

// Current returns the calendar view of Now.
func (e *Engine) Current() Tick { return At(e.Now()) }

// Day returns the current day index.
func (e *Engine) Day() int { return DayOf(e.Now()) }

// HourOfDay returns the current hour within the day.
func (e *Engine) HourOfDay() float64 { return HourOfDay(e.Now()) }

// Weekday returns the current weekday name.
func (e *Engine) Weekday() string { return WeekdayOf(e.Day()) }

// Scale returns the real duration of one simulated hour.
func (e *Engine) Scale() time.Duration { return e.scale }

// Subscribe returns a channel receiving every tick. The channel is closed
// when the engine stops.
func (e *Engine) Subscribe() <-chan Tick { return e.bus.Subscribe() }

// Unsubscribe releases a subscription.
func (e *Engine) Unsubscribe(ch <-chan Tick) { e.bus.Unsubscribe(ch) }

// Sleep blocks for the real-time equivalent of hours, or until ctx is done.
func (e *Engine) Sleep(ctx context.Context, hours float64) error {
	return SleepScaled(ctx, e.scale, hours)
}

// SleepScaled blocks for hours*scale of real time.
func SleepScaled(ctx context.Context, scale time.Duration, hours float64) error {
	if hours <= 0 {
		return ctx.Err()
	}
	d := time.Duration(hours * float64(scale))
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WaitUntil blocks until simulated time reaches hours, the engine stops, or
// ctx is done.
func (e *Engine) WaitUntil(ctx context.Context, hours float64) error {
	if e.Now() >= hours {
		return nil
	}
	sub := e.Subscribe()
	defer e.Unsubscribe(sub)
	for e.Now() < hours {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-sub:
			if !ok {
				if e.Now() >= hours {
					return nil
				}
				return errors.New("simclock: engine stopped")
			}
		}
	}
	return nil
}
