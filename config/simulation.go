package config

import (
	"fmt"
	"strings"

	"github.com/kilianp07/logisim/core/simclock"
)

// SimulationConfig drives the weekly delivery plan.
type SimulationConfig struct {
	Days                    int      `json:"days"`
	Hub                     string   `json:"hub"`
	Airport                 string   `json:"airport"`
	ForaneCities            []string `json:"forane_cities"`
	LocalDeliveriesPerTruck int      `json:"local_deliveries_per_truck"`
	GroundDays              []string `json:"ground_days"`
	AirDays                 []string `json:"air_days"`
	ReturnHours             float64  `json:"return_hours"`
	LocalPauseHours         float64  `json:"local_pause_hours"`
	Parallelism             int      `json:"parallelism"`
	Seed                    int64    `json:"seed"`
}

func (c *SimulationConfig) SetDefaults() {
	if c.Days == 0 {
		c.Days = 7
	}
	if c.Hub == "" {
		c.Hub = "GDL"
	}
	if c.Airport == "" {
		c.Airport = c.Hub + " Airport"
	}
	if len(c.ForaneCities) == 0 {
		c.ForaneCities = []string{"SLP", "ZAC", "AGS"}
	}
	if c.LocalDeliveriesPerTruck == 0 {
		c.LocalDeliveriesPerTruck = 8
	}
	if c.GroundDays == nil {
		c.GroundDays = []string{"Monday", "Wednesday", "Friday"}
	}
	if c.AirDays == nil {
		c.AirDays = []string{"Thursday", "Sunday"}
	}
	if c.ReturnHours == 0 {
		c.ReturnHours = 0.5
	}
	if c.LocalPauseHours == 0 {
		c.LocalPauseHours = 0.5
	}
	if c.Parallelism == 0 {
		c.Parallelism = len(c.ForaneCities)
	}
}

func (c SimulationConfig) Validate() error {
	if c.Days < 0 {
		return fmt.Errorf("simulation: days must not be negative")
	}
	if strings.TrimSpace(c.Hub) == "" {
		return fmt.Errorf("simulation: hub is required")
	}
	if c.LocalDeliveriesPerTruck < 0 {
		return fmt.Errorf("simulation: local_deliveries_per_truck must not be negative")
	}
	ground := map[string]bool{}
	for _, d := range c.GroundDays {
		if !validWeekday(d) {
			return fmt.Errorf("simulation: unknown ground day %q", d)
		}
		ground[strings.ToLower(d)] = true
	}
	for _, d := range c.AirDays {
		if !validWeekday(d) {
			return fmt.Errorf("simulation: unknown air day %q", d)
		}
		if ground[strings.ToLower(d)] {
			return fmt.Errorf("simulation: %s is both a ground and an air day", d)
		}
	}
	if c.ReturnHours < 0 || c.LocalPauseHours < 0 {
		return fmt.Errorf("simulation: pauses must not be negative")
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("simulation: parallelism must not be negative")
	}
	return nil
}

func validWeekday(d string) bool {
	for _, w := range simclock.Weekdays() {
		if strings.EqualFold(w, d) {
			return true
		}
	}
	return false
}
