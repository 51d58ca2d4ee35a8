// Package config loads server configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `yaml:"addr"`

	Store struct {
		// Driver selects the table store backend:
		// "memory", "workbook", or "sqlite".
		Driver string `yaml:"driver"`

		// Path is the workbook .xlsx path or the sqlite database path.
		// Ignored by the memory driver.
		Path string `yaml:"path"`
	} `yaml:"store"`

	Policy struct {
		// EnforceAnnualCap blocks annual leave requests that exceed the
		// remaining entitlement. Historically display-only; off by default.
		EnforceAnnualCap bool `yaml:"enforce_annual_cap"`
	} `yaml:"policy"`

	// LogLevel is a zerolog level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.Addr = ":8080"
	c.Store.Driver = "sqlite"
	c.Store.Path = "hr.db"
	c.LogLevel = "info"
	return c
}

// Load reads a YAML config file, applying defaults for absent fields.
func Load(path string) (Config, error) {
	c := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	switch c.Store.Driver {
	case "memory", "workbook", "sqlite":
	default:
		return Config{}, fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver != "memory" && c.Store.Path == "" {
		return Config{}, fmt.Errorf("store driver %q needs a path", c.Store.Driver)
	}
	return c, nil
}
