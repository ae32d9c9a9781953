// Package config loads csgtree settings from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/chazu/csgtree/pkg/cache"
	"github.com/chazu/csgtree/pkg/logging"
	"github.com/chazu/csgtree/pkg/tree"
)

// Config is the full set of settings.
type Config struct {
	Cache     cache.Config     `yaml:"cache"`
	Rasterize tree.Rasterizing `yaml:"rasterize"`
	Log       LogConfig        `yaml:"log"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Cache:     cache.DefaultConfig(),
		Rasterize: tree.DefaultRasterizing,
		Log:       LogConfig{Level: "info"},
	}
}

// Load starts from Default, merges the YAML file at path if it exists, then
// applies CSGTREE_* environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	loadEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("CSGTREE_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("CSGTREE_CACHE_PERSIST"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Cache.Persist = b
		}
	}
	if v := os.Getenv("CSGTREE_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("CSGTREE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := c.Cache.Validate(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	r := c.Rasterize
	if r.MinAngle <= 0 || r.MinAngle > 360 {
		return fmt.Errorf("rasterize.min_angle must be in (0, 360], got %g", r.MinAngle)
	}
	if r.MinSize <= 0 {
		return fmt.Errorf("rasterize.min_size must be positive, got %g", r.MinSize)
	}
	if r.FixedCount < 0 || r.MinSlices < 0 {
		return fmt.Errorf("rasterize counts must not be negative")
	}
	return nil
}

// Apply installs the settings process-wide: the default cache, the
// rasterizing defaults and a text logger on stderr.
func (c Config) Apply() error {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	logging.SetLogger(logging.NewText(os.Stderr, level))
	tree.SetRasterizingDefaults(c.Rasterize)
	cache.Configure(c.Cache)
	return nil
}
