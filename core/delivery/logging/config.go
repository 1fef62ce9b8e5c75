package logging

import (
	"fmt"

	"github.com/kilianp07/logisim/core/factory"
)

// Config selects and parameterises the store backend.
type Config struct {
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults selects the memory backend and sane rotation values.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
	if c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	if c.MaxAgeDays == 0 {
		c.MaxAgeDays = 7
	}
}

// Validate checks the backend is known and has a path when it needs one.
func (c Config) Validate() error {
	known := false
	for _, t := range storeRegistry.Types() {
		if t == c.Backend {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("delivery_log: unknown backend %q", c.Backend)
	}
	if c.Backend != "memory" && c.Path == "" {
		return fmt.Errorf("delivery_log: path required for %s backend", c.Backend)
	}
	return nil
}

// Module converts the config to a factory module description.
func (c Config) Module() factory.ModuleConfig {
	return factory.ModuleConfig{
		Type: c.Backend,
		Conf: map[string]any{
			"path":         c.Path,
			"max_size_mb":  c.MaxSizeMB,
			"max_backups":  c.MaxBackups,
			"max_age_days": c.MaxAgeDays,
		},
	}
}

var storeRegistry = factory.NewRegistry[LogStore]()

// RegisterStore adds a store factory identified by name.
func RegisterStore(name string, f factory.Factory[LogStore]) error {
	return storeRegistry.Register(name, f)
}

func init() {
	_ = RegisterStore("memory", func(map[string]any) (LogStore, error) {
		return NewMemoryStore(), nil
	})
	_ = RegisterStore("jsonl", func(conf map[string]any) (LogStore, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.MaxSizeMB < 0 {
			return NewJSONLStore(c.Path)
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
	_ = RegisterStore("sqlite", func(conf map[string]any) (LogStore, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSQLiteStore(c.Path)
	})
}

// NewStore builds the configured store. A jsonl backend with MaxSizeMB below
// zero writes a plain file without rotation.
func NewStore(cfg Config) (LogStore, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return storeRegistry.Create(cfg.Module())
}
