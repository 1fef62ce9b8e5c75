package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kilianp07/logisim/core/logger"
	"github.com/kilianp07/logisim/core/model"
)

var (
	// ErrInTransit rejects load, unload and transport while travelling.
	ErrInTransit = errors.New("vehicle: in transit")
	// ErrEmptyCargo rejects unload and transport of an empty vehicle.
	ErrEmptyCargo = errors.New("vehicle: no cargo")
	// ErrInvalidDestination rejects a blank destination.
	ErrInvalidDestination = errors.New("vehicle: invalid destination")
	// ErrLeased is returned when the vehicle is held by another owner.
	ErrLeased = errors.New("vehicle: leased by another owner")
	// ErrBusy rejects operations while an unload is in progress.
	ErrBusy = errors.New("vehicle: unload in progress")
)

// Status is the vehicle state.
type Status string

const (
	Idle      Status = "idle"
	Loading   Status = "loading"
	InTransit Status = "in_transit"
)

// Sleeper turns simulated hours into blocking time.
type Sleeper interface {
	Sleep(ctx context.Context, hours float64) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, hours float64) error

func (f SleeperFunc) Sleep(ctx context.Context, hours float64) error { return f(ctx, hours) }

// NoDelay completes every simulated wait immediately.
var NoDelay Sleeper = SleeperFunc(func(ctx context.Context, _ float64) error { return ctx.Err() })

// Vehicle is a fleet member. All methods are safe for concurrent use.
type Vehicle struct {
	id          string
	profile     Profile
	maxCapacity float64
	sleeper     Sleeper
	log         logger.Logger

	mu          sync.RWMutex
	cargo       []model.Product
	load        float64
	location    string
	destination string
	status      Status
	unloading   bool
	lease       string
}

// Option customises a Vehicle.
type Option func(*Vehicle)

// WithSleeper sets how transport and unload durations are waited out.
func WithSleeper(s Sleeper) Option {
	return func(v *Vehicle) {
		if s != nil {
			v.sleeper = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(v *Vehicle) { v.log = logger.OrNop(l) } }

// New creates an idle vehicle at location.
func New(id string, profile Profile, maxCapacity float64, location string, opts ...Option) (*Vehicle, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("vehicle: empty id")
	}
	if profile == nil {
		return nil, errors.New("vehicle: nil profile")
	}
	if maxCapacity <= 0 {
		return nil, fmt.Errorf("vehicle %s: capacity must be positive, got %.2f", id, maxCapacity)
	}
	v := &Vehicle{
		id:          id,
		profile:     profile,
		maxCapacity: maxCapacity,
		sleeper:     NoDelay,
		log:         logger.Nop{},
		location:    location,
		status:      Idle,
	}
	for _, o := range opts {
		o(v)
	}
	return v, nil
}

// NewTruck creates a ground vehicle with the default road table.
func NewTruck(id string, capacity float64, location string, opts ...Option) (*Vehicle, error) {
	return New(id, NewGround(nil), capacity, location, opts...)
}

// NewAirplane creates an air vehicle with the default air table.
func NewAirplane(id string, capacity float64, location string, opts ...Option) (*Vehicle, error) {
	return New(id, NewAir(nil), capacity, location, opts...)
}

func (v *Vehicle) ID() string           { return v.id }
func (v *Vehicle) Kind() Kind           { return v.profile.Kind() }
func (v *Vehicle) Profile() Profile     { return v.profile }
func (v *Vehicle) MaxCapacity() float64 { return v.maxCapacity }

// CanCarry applies the profile eligibility rule.
func (v *Vehicle) CanCarry(p model.Product) bool { return v.profile.CanCarry(p) }

// CurrentLoad returns the cargo weight.
func (v *Vehicle) CurrentLoad() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.load
}

// AvailableCapacity returns the remaining weight allowance.
func (v *Vehicle) AvailableCapacity() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.maxCapacity - v.load
}

// Location returns the current location.
func (v *Vehicle) Location() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.location
}

// Status returns the current status.
func (v *Vehicle) Status() Status {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.status
}

// InTransit reports whether the vehicle is travelling.
func (v *Vehicle) InTransit() bool { return v.Status() == InTransit }

// Cargo returns a copy of the cargo.
func (v *Vehicle) Cargo() []model.Product {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]model.Product(nil), v.cargo...)
}

// Rejection explains why a unit was not loaded.
type Rejection struct {
	Product model.Product
	Reason  string
}

// LoadResult reports a partial load.
type LoadResult struct {
	Requested int
	Accepted  []model.Product
	Rejected  []Rejection
}

// Load adds eligible units that fit. Ineligible or overweight units are
// skipped and reported; the rest are still loaded.
func (v *Vehicle) Load(items []model.Product) (LoadResult, error) {
	res := LoadResult{Requested: len(items)}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.status == InTransit {
		return res, ErrInTransit
	}
	if v.unloading {
		return res, ErrBusy
	}
	for _, p := range items {
		switch {
		case !v.profile.CanCarry(p):
			res.Rejected = append(res.Rejected, Rejection{Product: p, Reason: "not eligible for " + string(v.profile.Kind())})
		case v.hasLocked(p):
			res.Rejected = append(res.Rejected, Rejection{Product: p, Reason: "already loaded"})
		case v.load+p.Weight > v.maxCapacity:
			res.Rejected = append(res.Rejected, Rejection{
				Product: p,
				Reason:  fmt.Sprintf("exceeds capacity: %.2f kg, %.2f kg free", p.Weight, v.maxCapacity-v.load),
			})
		default:
			v.cargo = append(v.cargo, p)
			v.load += p.Weight
			res.Accepted = append(res.Accepted, p)
		}
	}
	if len(v.cargo) > 0 {
		v.status = Loading
	}
	v.log.Debugw("load", map[string]any{
		"vehicle": v.id, "requested": res.Requested, "accepted": len(res.Accepted), "load_kg": v.load,
	})
	return res, nil
}

func (v *Vehicle) hasLocked(p model.Product) bool {
	for _, c := range v.cargo {
		if c.Same(p) {
			return true
		}
	}
	return false
}

// Unload empties the vehicle after the profile unload time. On context
// cancellation the cargo stays on board. The unloaded units are returned.
func (v *Vehicle) Unload(ctx context.Context) ([]model.Product, error) {
	v.mu.Lock()
	switch {
	case v.status == InTransit:
		v.mu.Unlock()
		return nil, ErrInTransit
	case v.unloading:
		v.mu.Unlock()
		return nil, ErrBusy
	case len(v.cargo) == 0:
		v.mu.Unlock()
		return nil, ErrEmptyCargo
	}
	v.unloading = true
	hours := v.profile.UnloadHours(v.load)
	v.mu.Unlock()

	err := v.sleeper.Sleep(ctx, hours)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.unloading = false
	if err != nil {
		return nil, fmt.Errorf("vehicle %s unload: %w", v.id, err)
	}
	out := v.cargo
	v.cargo = nil
	v.load = 0
	v.status = Idle
	v.log.Infof("vehicle %s unloaded %d units at %s", v.id, len(out), v.location)
	return out, nil
}

// Trip describes a completed transport leg.
type Trip struct {
	From       string
	To         string
	DistanceKM float64
	Hours      float64
	LoadKG     float64
}

// Transport travels to dest, blocking for the profile travel time. On
// context cancellation the vehicle stays at its origin with its cargo.
func (v *Vehicle) Transport(ctx context.Context, dest string) (Trip, error) {
	dest = strings.TrimSpace(dest)
	v.mu.Lock()
	switch {
	case v.status == InTransit:
		d := v.destination
		v.mu.Unlock()
		return Trip{}, fmt.Errorf("%w to %s", ErrInTransit, d)
	case v.unloading:
		v.mu.Unlock()
		return Trip{}, ErrBusy
	case len(v.cargo) == 0:
		v.mu.Unlock()
		return Trip{}, ErrEmptyCargo
	case dest == "":
		v.mu.Unlock()
		return Trip{}, ErrInvalidDestination
	}
	trip := Trip{
		From:       v.location,
		To:         dest,
		DistanceKM: v.profile.Distance(dest),
		Hours:      v.profile.TransportHours(dest, v.load, v.maxCapacity),
		LoadKG:     v.load,
	}
	v.status = InTransit
	v.destination = dest
	v.mu.Unlock()
	v.log.Infof("vehicle %s departing %s -> %s (%.0f km, %.2f h, %.2f kg)",
		v.id, trip.From, dest, trip.DistanceKM, trip.Hours, trip.LoadKG)

	err := v.sleeper.Sleep(ctx, trip.Hours)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.destination = ""
	v.status = Loading
	if err != nil {
		v.log.Warnf("vehicle %s transport to %s interrupted: %v", v.id, dest, err)
		return trip, fmt.Errorf("vehicle %s transport: %w", v.id, err)
	}
	v.location = dest
	v.log.Infof("vehicle %s arrived at %s", v.id, dest)
	return trip, nil
}

// SetLocation moves the vehicle without travel time, e.g. a return to the
// hub. It is refused while in transit.
func (v *Vehicle) SetLocation(loc string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.status == InTransit {
		return ErrInTransit
	}
	v.location = loc
	return nil
}

// Acquire leases the vehicle to owner. It succeeds when the vehicle is free
// or already held by owner, and never while in transit.
func (v *Vehicle) Acquire(owner string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.lease != "" && v.lease != owner {
		return false
	}
	if v.status == InTransit {
		return false
	}
	v.lease = owner
	return true
}

// Release ends the lease held by owner.
func (v *Vehicle) Release(owner string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.lease != owner {
		return false
	}
	v.lease = ""
	return true
}

// LeasedBy returns the current lease owner, empty when free.
func (v *Vehicle) LeasedBy() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lease
}

// Snapshot is a read-only view of a vehicle.
type Snapshot struct {
	ID          string  `json:"id"`
	Kind        Kind    `json:"kind"`
	MaxCapacity float64 `json:"max_capacity_kg"`
	Load        float64 `json:"load_kg"`
	Location    string  `json:"location"`
	Destination string  `json:"destination,omitempty"`
	Status      Status  `json:"status"`
	Units       int     `json:"units"`
	LeasedBy    string  `json:"leased_by,omitempty"`
}

// Snapshot returns the current view.
func (v *Vehicle) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Snapshot{
		ID:          v.id,
		Kind:        v.profile.Kind(),
		MaxCapacity: v.maxCapacity,
		Load:        v.load,
		Location:    v.location,
		Destination: v.destination,
		Status:      v.status,
		Units:       len(v.cargo),
		LeasedBy:    v.lease,
	}
}

func (v *Vehicle) String() string {
	s := v.Snapshot()
	return fmt.Sprintf("%s[%s %.2f/%.2f kg @ %s %s]", s.ID, s.Kind, s.Load, s.MaxCapacity, s.Location, s.Status)
}
