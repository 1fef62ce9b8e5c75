package replenish

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the night window boundaries and the resampling interval.
type Config struct {
	NightStartHour float64 `json:"night_start_hour" yaml:"night_start_hour"`
	NightEndHour   float64 `json:"night_end_hour" yaml:"night_end_hour"`
	PollIntervalMS int     `json:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// SetDefaults fills unset fields: window 21:00 to 08:00, 50 ms polling.
func (c *Config) SetDefaults() {
	if c.NightStartHour == 0 && c.NightEndHour == 0 {
		c.NightStartHour = 21
		c.NightEndHour = 8
	}
	if c.PollIntervalMS == 0 {
		c.PollIntervalMS = 50
	}
}

// Validate checks the window is an overnight interval within a day.
func (c Config) Validate() error {
	if c.NightStartHour < 0 || c.NightStartHour >= 24 || c.NightEndHour < 0 || c.NightEndHour >= 24 {
		return fmt.Errorf("night window hours must be in [0,24): start=%v end=%v", c.NightStartHour, c.NightEndHour)
	}
	if c.NightStartHour <= c.NightEndHour {
		return fmt.Errorf("night window must span midnight: start=%v end=%v", c.NightStartHour, c.NightEndHour)
	}
	if c.PollIntervalMS <= 0 {
		return fmt.Errorf("poll_interval_ms must be positive")
	}
	return nil
}

// LoadConfig loads Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err != nil {
		return Config{}, err
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}

// DecodeConfig reads a Config in the given format from r.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}
