// Package config loads fluxkit demo configuration from an optional yaml file
// with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"fluxkit/internal/logging"
)

// Config holds all fluxkit binary configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Counter CounterConfig `yaml:"counter"`
	Todo    TodoConfig    `yaml:"todo"`
}

// LoggingConfig controls the zap root logger built by the binary.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"` // debug level instead of info
	JSON    bool `yaml:"json"`    // json encoding instead of console
}

// CounterConfig configures the counter demo.
type CounterConfig struct {
	Initial int `yaml:"initial"`
}

// TodoConfig configures the todo demo.
type TodoConfig struct {
	Filter string   `yaml:"filter"` // initial visibility filter
	Seed   []string `yaml:"seed"`   // item titles dispatched at startup
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Todo: TodoConfig{Filter: "all"},
	}
}

// Load reads path if it exists, falling back to Default, then applies
// FLUXKIT_* environment overrides. A missing file is not an error; an
// unreadable or malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			logging.Get(logging.CategoryConfig).Debug("no config file, using defaults", zap.String("path", path))
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides file values from the environment. Recognized variables:
// FLUXKIT_VERBOSE, FLUXKIT_LOG_JSON, FLUXKIT_COUNTER_INITIAL,
// FLUXKIT_TODO_FILTER.
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("FLUXKIT_VERBOSE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FLUXKIT_VERBOSE: %w", err)
		}
		c.Logging.Verbose = b
	}
	if v, ok := os.LookupEnv("FLUXKIT_LOG_JSON"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FLUXKIT_LOG_JSON: %w", err)
		}
		c.Logging.JSON = b
	}
	if v, ok := os.LookupEnv("FLUXKIT_COUNTER_INITIAL"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FLUXKIT_COUNTER_INITIAL: %w", err)
		}
		c.Counter.Initial = n
	}
	if v, ok := os.LookupEnv("FLUXKIT_TODO_FILTER"); ok {
		c.Todo.Filter = v
	}
	return nil
}
