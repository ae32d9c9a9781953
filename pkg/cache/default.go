package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/chazu/csgtree/pkg/object"
)

var (
	defaultMu   sync.Mutex
	defaultCfg  = DefaultConfig()
	defaultOpen *Cache
	defaultUsed bool
	// defaultTmp is created by the first TempFile call.
	defaultTmp *Scratch
)

// Configure sets the configuration of the process-wide cache. It may be
// called any number of times before the cache is first used; afterwards a
// different configuration panics.
func Configure(cfg Config) {
	cfg, err := cfg.Validate()
	if err != nil {
		panic(err)
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultUsed {
		if cfg != defaultCfg {
			panic(fmt.Sprintf("cache: already in use with %+v, cannot reconfigure to %+v", defaultCfg, cfg))
		}
		return
	}
	defaultCfg = cfg
}

// Default returns the process-wide cache, opening it on first use.
func Default() *Cache {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultUsed = true
	if defaultOpen != nil {
		return defaultOpen
	}
	c, err := Open(defaultCfg)
	if err != nil {
		// Fall back to memory only; geometry can always be recomputed.
		cfg := defaultCfg
		cfg.Persist = false
		c, _ = Open(cfg)
	}
	defaultOpen = c
	return c
}

// Load looks up an entry in the process-wide cache.
func Load(fp uint64, suffix string) (object.Object, bool) {
	return Default().Load(fp, suffix)
}

// Put stores an entry in the process-wide cache and returns it.
func Put(v object.Object, fp uint64, suffix string) object.Object {
	return Default().Store(v, fp, suffix)
}

// TempFile returns an unused path with the given suffix in the scratch
// area below the configured cache root. The scratch directory is created on
// first use and removed by Shutdown.
func TempFile(suffix string) (string, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultUsed = true
	if defaultTmp == nil {
		s, err := NewScratch(defaultCfg.Dir)
		if err != nil {
			return "", err
		}
		defaultTmp = s
	}
	return defaultTmp.File(suffix), nil
}

// Shutdown closes the process-wide cache and removes its scratch area. A
// later use reopens both with the same configuration.
func Shutdown() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	var errs []error
	if defaultTmp != nil {
		errs = append(errs, defaultTmp.Close())
		defaultTmp = nil
	}
	if defaultOpen != nil {
		errs = append(errs, defaultOpen.Close())
		defaultOpen = nil
	}
	return errors.Join(errs...)
}
