package model

import (
	"math/rand"
	"sync"
	"time"
)

// Factory draws random units from the category table. It is safe for
// concurrent use.
type Factory struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFactory returns a factory seeded with seed; zero uses the wall clock.
func NewFactory(seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{rng: rand.New(rand.NewSource(seed))}
}

// Random generates a unit of category c with a weight in the category range
// rounded to two decimals.
func (f *Factory) Random(c Category) Product {
	i, ok := index[c]
	if !ok {
		return Product{}
	}
	s := catalog[i]
	f.mu.Lock()
	name := s.Names[f.rng.Intn(len(s.Names))]
	w := s.MinWeight + f.rng.Float64()*(s.MaxWeight-s.MinWeight)
	f.mu.Unlock()
	w = round2(w)
	if w < s.MinWeight {
		w = s.MinWeight
	}
	if w > s.MaxWeight {
		w = s.MaxWeight
	}
	return NewProduct(c, name, w)
}

// Batch generates n units of category c.
func (f *Factory) Batch(c Category, n int) []Product {
	out := make([]Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.Random(c))
	}
	return out
}

// RandomCategory picks a category uniformly.
func (f *Factory) RandomCategory() Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	return catalog[f.rng.Intn(len(catalog))].Category
}

// Shuffled returns the categories in random order.
func (f *Factory) Shuffled() []Category {
	cs := Categories()
	f.mu.Lock()
	f.rng.Shuffle(len(cs), func(i, j int) { cs[i], cs[j] = cs[j], cs[i] })
	f.mu.Unlock()
	return cs
}

// Float64 exposes the factory's source for callers that need a draw in [0,1).
func (f *Factory) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Float64()
}
