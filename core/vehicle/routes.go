package vehicle

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Routes is a concurrent destination to distance (km) table.
type Routes struct {
	mu    sync.RWMutex
	table map[string]float64
}

// NewRoutes builds a table from m.
func NewRoutes(m map[string]float64) *Routes {
	r := &Routes{table: make(map[string]float64, len(m))}
	for k, v := range m {
		r.table[routeKey(k)] = v
	}
	return r
}

func routeKey(dest string) string { return strings.ToLower(strings.TrimSpace(dest)) }

// Lookup returns the known distance to dest.
func (r *Routes) Lookup(dest string) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.table[routeKey(dest)]
	return d, ok
}

// Add registers or replaces a route.
func (r *Routes) Add(dest string, km float64) {
	r.mu.Lock()
	r.table[routeKey(dest)] = km
	r.mu.Unlock()
}

// Len returns the number of known routes.
func (r *Routes) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.table)
}

// estimate derives a stable pseudo distance in [base, base+spread) from the
// destination name.
func estimate(dest string, base, spread float64) float64 {
	h := xxhash.Sum64String(routeKey(dest))
	return base + float64(h%uint64(spread))
}

// DefaultGroundRoutes returns the stock road table.
func DefaultGroundRoutes() map[string]float64 {
	return map[string]float64{
		"City A":              150,
		"City B":              300,
		"City C":              450,
		"City D":              200,
		"Port":                100,
		"Airport":             50,
		"Central Warehouse":   250,
		"North Branch":        180,
		"South Branch":        220,
		"Distribution Center": 120,
	}
}

// DefaultAirRoutes returns the stock air table, including the regional
// cities served from the hub airport.
func DefaultAirRoutes() map[string]float64 {
	return map[string]float64{
		"Port":                300,
		"Airport":             0,
		"Central Warehouse":   600,
		"North Branch":        1500,
		"South Branch":        1800,
		"Distribution Center": 400,
		"SLP":                 380,
		"ZAC":                 250,
		"AGS":                 260,
	}
}
