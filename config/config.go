package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/logisim/core/delivery/logging"
	"github.com/kilianp07/logisim/core/metrics"
	"github.com/kilianp07/logisim/core/replenish"
	"github.com/kilianp07/logisim/infra/monitoring"
	"github.com/kilianp07/logisim/infra/mqtt"
)

// EnvPrefix marks environment variables overriding file values. Nested keys
// use a double underscore, e.g. LOGISIM_WAREHOUSE__MAX_CAPACITY_KG.
const EnvPrefix = "LOGISIM_"

type Config struct {
	Clock       ClockConfig       `json:"clock"`
	Warehouse   WarehouseConfig   `json:"warehouse"`
	Replenish   replenish.Config  `json:"replenish"`
	Fleet       []VehicleConfig   `json:"fleet"`
	Routes      RoutesConfig      `json:"routes"`
	DeliveryLog logging.Config    `json:"delivery_log"`
	Metrics     metrics.Config    `json:"metrics"`
	Simulation  SimulationConfig  `json:"simulation"`
	Monitoring  monitoring.Config `json:"monitoring"`
	API         APIConfig         `json:"api"`
	MQTT        mqtt.Config       `json:"mqtt"`
}

// Load reads a YAML or JSON file, applies environment overrides, then fills
// defaults and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Default returns a configuration with every section defaulted, matching
// what Load produces for an empty file.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills unset values in every section.
func (c *Config) SetDefaults() {
	c.Clock.SetDefaults()
	c.Warehouse.SetDefaults()
	c.Replenish.SetDefaults()
	c.Simulation.SetDefaults()
	if len(c.Fleet) == 0 {
		c.Fleet = DefaultFleet(c.Simulation)
	}
	for i := range c.Fleet {
		c.Fleet[i].SetDefaults(c.Simulation)
	}
	c.Routes.SetDefaults()
	c.DeliveryLog.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate checks every section and joins the failures.
func (c Config) Validate() error {
	var errs []error
	if err := c.Clock.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Warehouse.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Replenish.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("replenish: %w", err))
	}
	if err := c.Simulation.Validate(); err != nil {
		errs = append(errs, err)
	}
	seen := make(map[string]bool, len(c.Fleet))
	for _, v := range c.Fleet {
		if err := v.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if seen[v.ID] {
			errs = append(errs, fmt.Errorf("fleet: duplicate vehicle id %q", v.ID))
		}
		seen[v.ID] = true
	}
	if err := c.Routes.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.DeliveryLog.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.MQTT.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Monitoring.TracesSampleRate < 0 || c.Monitoring.TracesSampleRate > 1 {
		errs = append(errs, fmt.Errorf("monitoring: traces_sample_rate must be within [0,1]"))
	}
	return errors.Join(errs...)
}
