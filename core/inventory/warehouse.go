package inventory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kilianp07/logisim/core/logger"
	"github.com/kilianp07/logisim/core/model"
)

var (
	// ErrInsufficientStock is returned when a reservation cannot be served in full.
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
	// ErrUnknownReservation is returned when committing a holder that reserved nothing.
	ErrUnknownReservation = errors.New("inventory: unknown reservation")
	// ErrInvalidWeight is returned for a non-positive capacity.
	ErrInvalidWeight = errors.New("inventory: weight must be positive")
)

// capacity comparisons tolerate float accumulation error
const loadEpsilon = 1e-9

// Warehouse is a concurrent, capacity-bounded inventory.
type Warehouse struct {
	name        string
	maxCapacity float64
	factory     *model.Factory
	log         logger.Logger

	mu       sync.RWMutex
	items    map[model.Category][]model.Product
	load     float64
	reserved map[string]string          // product ID -> holder
	holds    map[string][]model.Product // holder -> reserved units
}

// Option customises a Warehouse.
type Option func(*Warehouse)

// WithName labels the warehouse in logs and metrics.
func WithName(name string) Option { return func(w *Warehouse) { w.name = name } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(w *Warehouse) { w.log = logger.OrNop(l) } }

// WithFactory sets the product factory used by Fill.
func WithFactory(f *model.Factory) Option {
	return func(w *Warehouse) {
		if f != nil {
			w.factory = f
		}
	}
}

// New creates an empty warehouse holding at most maxCapacity kg.
func New(maxCapacity float64, opts ...Option) (*Warehouse, error) {
	if maxCapacity <= 0 {
		return nil, fmt.Errorf("max capacity %.2f: %w", maxCapacity, ErrInvalidWeight)
	}
	w := &Warehouse{
		name:        "main",
		maxCapacity: maxCapacity,
		factory:     model.NewFactory(0),
		log:         logger.Nop{},
		items:       make(map[model.Category][]model.Product),
		reserved:    make(map[string]string),
		holds:       make(map[string][]model.Product),
	}
	for _, c := range model.Categories() {
		w.items[c] = nil
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Name returns the warehouse label.
func (w *Warehouse) Name() string { return w.name }

// MaxCapacity returns the weight bound in kg.
func (w *Warehouse) MaxCapacity() float64 { return w.maxCapacity }

// CurrentLoad returns the stored weight in kg, reserved units included.
func (w *Warehouse) CurrentLoad() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.load
}

// OccupancyPercent returns CurrentLoad as a percentage of MaxCapacity.
func (w *Warehouse) OccupancyPercent() float64 {
	return w.CurrentLoad() / w.maxCapacity * 100
}

// FillResult reports what a Fill call added.
type FillResult struct {
	Available   float64
	AddedWeight float64
	Added       []model.Product
}

// Fill adds random units worth at most min(free space, target) kg. When a
// drawn unit does not fit, only categories whose heaviest unit fits the
// remaining space are tried; Fill stops when none is left.
func (w *Warehouse) Fill(target float64) FillResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	available := w.maxCapacity - w.load
	if target < available {
		available = target
	}
	res := FillResult{Available: available}
	if available <= 0 {
		res.Available = 0
		return res
	}
	remaining := available
	for remaining > 0 {
		p := w.factory.Random(w.factory.RandomCategory())
		if p.Weight > remaining+loadEpsilon {
			var ok bool
			if p, ok = w.fallbackUnit(remaining); !ok {
				break
			}
		}
		w.insertLocked(p)
		remaining -= p.Weight
		res.AddedWeight += p.Weight
		res.Added = append(res.Added, p)
	}
	w.log.Infof("warehouse %s filled %.2f kg (%d units), load %.2f/%.2f kg",
		w.name, res.AddedWeight, len(res.Added), w.load, w.maxCapacity)
	return res
}

func (w *Warehouse) fallbackUnit(remaining float64) (model.Product, bool) {
	for _, c := range w.factory.Shuffled() {
		if c.MaxWeight() > remaining {
			continue
		}
		if p := w.factory.Random(c); p.Weight <= remaining+loadEpsilon {
			return p, true
		}
	}
	return model.Product{}, false
}

func (w *Warehouse) insertLocked(p model.Product) {
	w.items[p.Category] = append(w.items[p.Category], p)
	w.load += p.Weight
	unitsAdded.WithLabelValues(w.name, string(p.Category)).Inc()
	warehouseLoad.WithLabelValues(w.name).Set(w.load)
}

// Add stores the given units, skipping those that would exceed capacity or
// carry a non-positive weight. It returns the units accepted.
func (w *Warehouse) Add(units ...model.Product) []model.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	var added []model.Product
	for _, p := range units {
		if p.Weight <= 0 || !p.Category.Valid() || w.load+p.Weight > w.maxCapacity+loadEpsilon {
			continue
		}
		if p.ID == "" {
			p.ID = model.NewProduct(p.Category, p.Name, p.Weight).ID
		}
		w.insertLocked(p)
		added = append(added, p)
	}
	return added
}

// Remove takes each requested unit out of stock, matching by identity and
// falling back to value equality. Reserved units are never removed. Only
// the units actually removed are returned; callers compare counts.
func (w *Warehouse) Remove(units []model.Product) []model.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	var removed []model.Product
	for _, want := range units {
		if p, ok := w.takeLocked(want, ""); ok {
			removed = append(removed, p)
		}
	}
	return removed
}

// takeLocked removes want from stock. Units reserved by someone other than
// holder are skipped.
func (w *Warehouse) takeLocked(want model.Product, holder string) (model.Product, bool) {
	list := w.items[want.Category]
	i := w.findLocked(list, want, func(p model.Product) bool { return w.reserved[p.ID] == holder })
	if i < 0 {
		return model.Product{}, false
	}
	p := list[i]
	w.items[want.Category] = append(list[:i:i], list[i+1:]...)
	w.load -= p.Weight
	if w.load < loadEpsilon {
		w.load = 0
	}
	delete(w.reserved, p.ID)
	unitsRemoved.WithLabelValues(w.name, string(p.Category)).Inc()
	warehouseLoad.WithLabelValues(w.name).Set(w.load)
	return p, true
}

func (w *Warehouse) findLocked(list []model.Product, want model.Product, usable func(model.Product) bool) int {
	for i, p := range list {
		if p.Same(want) && usable(p) {
			return i
		}
	}
	for i, p := range list {
		if p.Matches(want) && usable(p) {
			return i
		}
	}
	return -1
}

// HasEnough reports whether, per category, enough unreserved units exist to
// cover required. The answer is only a hint for a later Reserve or Remove.
func (w *Warehouse) HasEnough(required []model.Product) bool {
	need := model.CategorySummary(required)
	w.mu.RLock()
	defer w.mu.RUnlock()
	for c, n := range need {
		free := 0
		for _, p := range w.items[c] {
			if _, held := w.reserved[p.ID]; !held {
				free++
			}
		}
		if free < n {
			return false
		}
	}
	return true
}

// Reserve marks the requested units as held by holder. It is all or
// nothing: on ErrInsufficientStock no unit is reserved. The reserved units
// are returned; they may differ in identity from units matched by value.
func (w *Warehouse) Reserve(holder string, units []model.Product) ([]model.Product, error) {
	if holder == "" {
		return nil, errors.New("inventory: empty reservation holder")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	picked := make(map[string]struct{}, len(units))
	out := make([]model.Product, 0, len(units))
	for _, want := range units {
		i := w.findLocked(w.items[want.Category], want, func(p model.Product) bool {
			if _, held := w.reserved[p.ID]; held {
				return false
			}
			_, dup := picked[p.ID]
			return !dup
		})
		if i < 0 {
			return nil, fmt.Errorf("%s %q: %w", want.Category, want.Name, ErrInsufficientStock)
		}
		p := w.items[want.Category][i]
		picked[p.ID] = struct{}{}
		out = append(out, p)
	}
	for _, p := range out {
		w.reserved[p.ID] = holder
	}
	w.holds[holder] = append(w.holds[holder], out...)
	return out, nil
}

// Commit removes every unit reserved by holder and returns those actually
// removed.
func (w *Warehouse) Commit(holder string) ([]model.Product, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	held, ok := w.holds[holder]
	if !ok {
		return nil, ErrUnknownReservation
	}
	delete(w.holds, holder)
	removed := make([]model.Product, 0, len(held))
	for _, p := range held {
		if got, ok := w.takeLocked(p, holder); ok && got.Same(p) {
			removed = append(removed, got)
		}
	}
	return removed, nil
}

// Release drops the reservation of holder and returns how many units went
// back to free stock.
func (w *Warehouse) Release(holder string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	held := w.holds[holder]
	delete(w.holds, holder)
	n := 0
	for _, p := range held {
		if w.reserved[p.ID] == holder {
			delete(w.reserved, p.ID)
			n++
		}
	}
	return n
}

// Reserved reports how many units are currently reserved.
func (w *Warehouse) Reserved() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.reserved)
}
