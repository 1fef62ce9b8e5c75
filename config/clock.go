package config

import (
	"fmt"
	"time"
)

// ClockConfig sets how much wall time one simulated hour takes.
type ClockConfig struct {
	MillisPerHour int `json:"millis_per_hour"`
}

func (c *ClockConfig) SetDefaults() {
	if c.MillisPerHour == 0 {
		c.MillisPerHour = 1000
	}
}

func (c ClockConfig) Validate() error {
	if c.MillisPerHour <= 0 {
		return fmt.Errorf("clock: millis_per_hour must be positive, got %d", c.MillisPerHour)
	}
	return nil
}

// Scale is the wall duration of one simulated hour.
func (c ClockConfig) Scale() time.Duration {
	return time.Duration(c.MillisPerHour) * time.Millisecond
}

// WarehouseConfig describes the hub warehouse.
type WarehouseConfig struct {
	Name          string  `json:"name"`
	MaxCapacityKG float64 `json:"max_capacity_kg"`
	InitialFillKG float64 `json:"initial_fill_kg"`
	Seed          int64   `json:"seed"`
}

func (c *WarehouseConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "GDL"
	}
	if c.MaxCapacityKG == 0 {
		c.MaxCapacityKG = 50000
	}
	if c.InitialFillKG == 0 {
		c.InitialFillKG = 5000
	}
}

func (c WarehouseConfig) Validate() error {
	if c.MaxCapacityKG <= 0 {
		return fmt.Errorf("warehouse: max_capacity_kg must be positive")
	}
	if c.InitialFillKG < 0 || c.InitialFillKG > c.MaxCapacityKG {
		return fmt.Errorf("warehouse: initial_fill_kg %.2f outside [0, %.2f]", c.InitialFillKG, c.MaxCapacityKG)
	}
	return nil
}
