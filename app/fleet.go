package app

import (
	"fmt"

	"github.com/kilianp07/logisim/config"
	"github.com/kilianp07/logisim/core/vehicle"
)

// Fleet groups the registered vehicles by the runs they serve.
type Fleet struct {
	Local  []*vehicle.Vehicle
	Ground []*vehicle.Vehicle
	Air    []*vehicle.Vehicle
}

// All returns every vehicle, local ones last.
func (f Fleet) All() []*vehicle.Vehicle {
	out := make([]*vehicle.Vehicle, 0, len(f.Local)+len(f.Ground)+len(f.Air))
	out = append(out, f.Ground...)
	out = append(out, f.Air...)
	return append(out, f.Local...)
}

// BuildFleet creates the configured vehicles. Vehicles of one kind share a
// route table, so routes added at runtime are visible fleet-wide.
func BuildFleet(cfgs []config.VehicleConfig, routes config.RoutesConfig, opts ...vehicle.Option) (Fleet, error) {
	ground := routes.GroundTable()
	air := routes.AirTable()
	var f Fleet
	for _, c := range cfgs {
		kind, ok := vehicle.ParseKind(c.Kind)
		if !ok {
			return Fleet{}, fmt.Errorf("vehicle %s: unknown kind %q", c.ID, c.Kind)
		}
		var profile vehicle.Profile = vehicle.NewGround(ground)
		if kind == vehicle.KindAir {
			profile = vehicle.NewAir(air)
		}
		v, err := vehicle.New(c.ID, profile, c.CapacityKG, c.Location, opts...)
		if err != nil {
			return Fleet{}, err
		}
		switch {
		case c.Role == config.RoleLocal:
			f.Local = append(f.Local, v)
		case kind == vehicle.KindAir:
			f.Air = append(f.Air, v)
		default:
			f.Ground = append(f.Ground, v)
		}
	}
	return f, nil
}
