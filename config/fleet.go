package config

import (
	"fmt"
	"strings"

	"github.com/kilianp07/logisim/core/vehicle"
)

// Vehicle roles used by the simulation driver.
const (
	RoleLocal  = "local"
	RoleForane = "forane"
)

// VehicleConfig declares one vehicle. Size, when set on a ground vehicle,
// selects a truck preset (large, medium, small) instead of CapacityKG.
type VehicleConfig struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	Role       string  `json:"role"`
	Size       string  `json:"size"`
	CapacityKG float64 `json:"capacity_kg"`
	Location   string  `json:"location"`
}

// SetDefaults resolves the truck preset and places the vehicle at the hub,
// or at the hub airport for air vehicles.
func (c *VehicleConfig) SetDefaults(sim SimulationConfig) {
	c.Kind = strings.ToLower(c.Kind)
	if c.Kind == "" {
		c.Kind = string(vehicle.KindGround)
	}
	if k, ok := vehicle.ParseKind(c.Kind); ok {
		c.Kind = string(k)
	}
	if c.Role == "" {
		c.Role = RoleForane
	}
	if c.CapacityKG == 0 && c.Size != "" {
		if kg, ok := vehicle.TruckCapacity(c.Size); ok {
			c.CapacityKG = kg
		}
	}
	if c.Location == "" {
		if c.Kind == string(vehicle.KindAir) {
			c.Location = sim.Airport
		} else {
			c.Location = sim.Hub
		}
	}
}

func (c VehicleConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("fleet: vehicle id is required")
	}
	if _, ok := vehicle.ParseKind(c.Kind); !ok {
		return fmt.Errorf("fleet: vehicle %s: unknown kind %q", c.ID, c.Kind)
	}
	if c.Role != RoleLocal && c.Role != RoleForane {
		return fmt.Errorf("fleet: vehicle %s: unknown role %q", c.ID, c.Role)
	}
	if c.Role == RoleLocal && c.Kind != string(vehicle.KindGround) {
		return fmt.Errorf("fleet: vehicle %s: local vehicles must be ground", c.ID)
	}
	if c.Size != "" {
		if _, ok := vehicle.TruckCapacity(c.Size); !ok {
			return fmt.Errorf("fleet: vehicle %s: unknown truck size %q", c.ID, c.Size)
		}
	}
	if c.CapacityKG <= 0 {
		return fmt.Errorf("fleet: vehicle %s: capacity_kg must be positive", c.ID)
	}
	return nil
}

// DefaultFleet mirrors the reference network: per forane city one 500 kg
// truck at the hub and one 1000 kg plane at the hub airport, plus a large,
// medium and small local truck.
func DefaultFleet(sim SimulationConfig) []VehicleConfig {
	var out []VehicleConfig
	for _, city := range sim.ForaneCities {
		out = append(out, VehicleConfig{ID: "T-" + city, Kind: string(vehicle.KindGround), Role: RoleForane, CapacityKG: 500})
	}
	for _, city := range sim.ForaneCities {
		out = append(out, VehicleConfig{ID: "A-" + city, Kind: string(vehicle.KindAir), Role: RoleForane, CapacityKG: 1000})
	}
	for _, size := range []string{"large", "medium", "small"} {
		out = append(out, VehicleConfig{ID: "L-" + size, Kind: string(vehicle.KindGround), Role: RoleLocal, Size: size})
	}
	return out
}

// RoutesConfig extends the built-in distance tables, in km.
type RoutesConfig struct {
	Ground map[string]float64 `json:"ground"`
	Air    map[string]float64 `json:"air"`
}

// SetDefaults adds road distances from the hub to the forane cities and a
// short local leg, which the built-in ground table lacks.
func (c *RoutesConfig) SetDefaults() {
	if c.Ground == nil {
		c.Ground = map[string]float64{}
	}
	defaults := map[string]float64{"GDL": 25, "SLP": 330, "ZAC": 320, "AGS": 220}
	for k, v := range defaults {
		if _, ok := c.Ground[k]; !ok {
			c.Ground[k] = v
		}
	}
}

func (c RoutesConfig) Validate() error {
	for dest, km := range c.Ground {
		if km < 0 {
			return fmt.Errorf("routes: ground distance to %s is negative", dest)
		}
	}
	for dest, km := range c.Air {
		if km < 0 {
			return fmt.Errorf("routes: air distance to %s is negative", dest)
		}
	}
	return nil
}

// GroundTable merges the built-in ground table with the configured routes.
func (c RoutesConfig) GroundTable() *vehicle.Routes {
	return merged(vehicle.DefaultGroundRoutes(), c.Ground)
}

// AirTable merges the built-in air table with the configured routes.
func (c RoutesConfig) AirTable() *vehicle.Routes {
	return merged(vehicle.DefaultAirRoutes(), c.Air)
}

func merged(base, extra map[string]float64) *vehicle.Routes {
	r := vehicle.NewRoutes(base)
	for dest, km := range extra {
		r.Add(dest, km)
	}
	return r
}
