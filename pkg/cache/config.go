package cache

import "fmt"

// Backends of the persistent tier.
const (
	BackendDir    = "dir"
	BackendBadger = "badger"
)

// DefaultDir is the cache root used when none is configured, relative to
// the working directory.
const DefaultDir = ".pcsg.cache"

// Config controls where and whether entries are persisted.
type Config struct {
	// Dir is the root of the persistent tier and the scratch area.
	Dir string `yaml:"dir" json:"dir"`
	// Persist enables the persistent tier.
	Persist bool `yaml:"persist" json:"persist"`
	// Backend selects the persistent store: "dir" (sharded files) or
	// "badger".
	Backend string `yaml:"backend" json:"backend"`
}

// DefaultConfig returns a persistent file-backed configuration rooted at
// DefaultDir.
func DefaultConfig() Config {
	return Config{Dir: DefaultDir, Persist: true, Backend: BackendDir}
}

// Validate checks the backend name and fills in defaults.
func (c Config) Validate() (Config, error) {
	if c.Dir == "" {
		c.Dir = DefaultDir
	}
	if c.Backend == "" {
		c.Backend = BackendDir
	}
	switch c.Backend {
	case BackendDir, BackendBadger:
		return c, nil
	}
	return c, fmt.Errorf("cache: unknown backend %q", c.Backend)
}
