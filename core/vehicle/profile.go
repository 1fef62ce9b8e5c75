package vehicle

import "github.com/kilianp07/logisim/core/model"

// Kind discriminates the vehicle variants.
type Kind string

const (
	KindGround Kind = "ground"
	KindAir    Kind = "air"
)

// ParseKind accepts "ground" (or "truck") and "air" (or "airplane").
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "ground", "truck":
		return KindGround, true
	case "air", "airplane", "plane":
		return KindAir, true
	}
	return "", false
}

// Profile carries what differs between vehicle variants.
type Profile interface {
	Kind() Kind
	SpeedKMH() float64
	// CanCarry is the per-item eligibility rule.
	CanCarry(p model.Product) bool
	// Distance returns the table distance or a stable estimate.
	Distance(dest string) float64
	TransportHours(dest string, load, capacity float64) float64
	UnloadHours(load float64) float64
	AddRoute(dest string, km float64)
}

const (
	groundSpeedKMH   = 70
	groundLoadFactor = 0.2

	airSpeedKMH     = 850
	airLoadFactor   = 0.05
	airGroundHours  = 0.5
	airShortHopHour = 0.1
	// AirMaxItemKG is the heaviest single unit an aircraft accepts.
	AirMaxItemKG = 150
)

// Ground is the road profile: every unit is eligible, up to 20% slower at
// full load.
type Ground struct{ routes *Routes }

// NewGround returns a ground profile over routes; nil uses the defaults.
func NewGround(routes *Routes) *Ground {
	if routes == nil {
		routes = NewRoutes(DefaultGroundRoutes())
	}
	return &Ground{routes: routes}
}

func (*Ground) Kind() Kind                         { return KindGround }
func (*Ground) SpeedKMH() float64                  { return groundSpeedKMH }
func (*Ground) CanCarry(model.Product) bool        { return true }
func (g *Ground) AddRoute(dest string, km float64) { g.routes.Add(dest, km) }

func (g *Ground) Distance(dest string) float64 {
	if d, ok := g.routes.Lookup(dest); ok {
		return d
	}
	return estimate(dest, 100, 400)
}

func (g *Ground) TransportHours(dest string, load, capacity float64) float64 {
	return g.Distance(dest) / groundSpeedKMH * loadFactor(load, capacity, groundLoadFactor)
}

func (*Ground) UnloadHours(load float64) float64 { return 0.2 + load/1000*0.08 }

// Air is the aircraft profile: units heavier than MaxItemKG are refused and
// every leg adds a fixed ground handling time.
type Air struct {
	routes    *Routes
	MaxItemKG float64
}

// NewAir returns an air profile over routes; nil uses the defaults.
func NewAir(routes *Routes) *Air {
	if routes == nil {
		routes = NewRoutes(DefaultAirRoutes())
	}
	return &Air{routes: routes, MaxItemKG: AirMaxItemKG}
}

func (*Air) Kind() Kind                         { return KindAir }
func (*Air) SpeedKMH() float64                  { return airSpeedKMH }
func (a *Air) AddRoute(dest string, km float64) { a.routes.Add(dest, km) }

func (a *Air) CanCarry(p model.Product) bool { return p.Weight > 0 && p.Weight <= a.MaxItemKG }

func (a *Air) Distance(dest string) float64 {
	if d, ok := a.routes.Lookup(dest); ok {
		return d
	}
	return estimate(dest, 500, 3500)
}

func (a *Air) TransportHours(dest string, load, capacity float64) float64 {
	d := a.Distance(dest)
	if d == 0 {
		return airShortHopHour
	}
	return d/airSpeedKMH*loadFactor(load, capacity, airLoadFactor) + airGroundHours
}

func (*Air) UnloadHours(load float64) float64 { return 0.15 + load/1000*0.03 }

func loadFactor(load, capacity, max float64) float64 {
	if capacity <= 0 {
		return 1
	}
	return 1 + load/capacity*max
}

// Truck size presets in kg.
const (
	LargeTruckKG  = 500
	MediumTruckKG = 250
	SmallTruckKG  = 150
)

// TruckCapacity maps "large", "medium" and "small" to a capacity.
func TruckCapacity(size string) (float64, bool) {
	switch size {
	case "large":
		return LargeTruckKG, true
	case "medium":
		return MediumTruckKG, true
	case "small":
		return SmallTruckKG, true
	}
	return 0, false
}
