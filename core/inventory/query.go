package inventory

import "github.com/kilianp07/logisim/core/model"

// Snapshot returns a copy of the stock. Every category is present, empty
// ones included.
func (w *Warehouse) Snapshot() map[model.Category][]model.Product {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[model.Category][]model.Product, len(w.items))
	for c, list := range w.items {
		out[c] = append([]model.Product(nil), list...)
	}
	return out
}

// TotalUnits returns the number of stored units.
func (w *Warehouse) TotalUnits() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, list := range w.items {
		n += len(list)
	}
	return n
}

// List returns up to limit units of category c in stock order. A limit of
// zero or less returns all of them.
func (w *Warehouse) List(c model.Category, limit int) []model.Product {
	w.mu.RLock()
	defer w.mu.RUnlock()
	list := w.items[c]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return append([]model.Product(nil), list...)
}

// CategoryStats aggregates one category.
type CategoryStats struct {
	Units    int     `json:"units"`
	WeightKG float64 `json:"weight_kg"`
}

// Summary returns unit count and weight per category.
func (w *Warehouse) Summary() map[model.Category]CategoryStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make(map[model.Category]CategoryStats, len(w.items))
	for c, list := range w.items {
		out[c] = CategoryStats{Units: len(list), WeightKG: model.TotalWeight(list)}
	}
	return out
}

// SelectOptions drives Select.
type SelectOptions struct {
	// TargetWeight is the weight to approach without exceeding.
	TargetWeight float64
	// MaxItems caps the number of units; zero means unlimited.
	MaxItems int
	// Categories restricts the search; empty means all.
	Categories []model.Category
	// Eligible filters units, e.g. by vehicle per-item ceiling.
	Eligible func(model.Product) bool
}

// selection stops once this share of the target is reached
const selectFillRatio = 0.8

const selectMaxIterations = 1000

// Select proposes unreserved units for a delivery. Categories are visited in
// random order and units in stock order; units that would overshoot the
// target are skipped. Select does not reserve anything.
func (w *Warehouse) Select(opts SelectOptions) []model.Product {
	if opts.TargetWeight <= 0 {
		return nil
	}
	cats := opts.Categories
	if len(cats) == 0 {
		cats = w.factory.Shuffled()
	} else {
		cats = append([]model.Category(nil), cats...)
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	var (
		out    []model.Product
		weight float64
		iters  int
	)
	done := func() bool {
		return weight >= opts.TargetWeight*selectFillRatio ||
			(opts.MaxItems > 0 && len(out) >= opts.MaxItems) ||
			iters >= selectMaxIterations
	}
	for _, c := range cats {
		for _, p := range w.items[c] {
			if done() {
				return out
			}
			iters++
			if _, held := w.reserved[p.ID]; held {
				continue
			}
			if weight+p.Weight > opts.TargetWeight {
				continue
			}
			if opts.Eligible != nil && !opts.Eligible(p) {
				continue
			}
			out = append(out, p)
			weight += p.Weight
		}
	}
	return out
}
