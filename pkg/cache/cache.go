package cache

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/chazu/csgtree/pkg/logging"
	"github.com/chazu/csgtree/pkg/object"
)

type entryKey struct {
	fp     uint64
	suffix string
}

// Cache is a two-tier content-addressable cache of objects.
type Cache struct {
	cfg Config

	mu   sync.Mutex
	weak map[entryKey]object.WeakRef

	store Store // nil when not persisting
}

// Stats describes the cache contents.
type Stats struct {
	Dir         string
	Backend     string
	Persist     bool
	WeakEntries int
	DiskEntries int
	DiskBytes   int64
}

// Open creates a cache for cfg, opening the persistent store if enabled.
func Open(cfg Config) (*Cache, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	c := &Cache{cfg: cfg, weak: make(map[entryKey]object.WeakRef)}
	if !cfg.Persist {
		return c, nil
	}
	switch cfg.Backend {
	case BackendBadger:
		c.store, err = newBadgerStore(filepath.Join(cfg.Dir, "badger"))
	default:
		c.store, err = newDirStore(cfg.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", cfg.Dir, err)
	}
	return c, nil
}

// Config returns the effective configuration.
func (c *Cache) Config() Config { return c.cfg }

// Load looks up the object stored under (fp, suffix). Any failure to read
// or decode a persisted entry is a miss, except a stored type version that
// differs from the registered one, which panics: the cache directory holds
// results of an incompatible build and must be cleared.
func (c *Cache) Load(fp uint64, suffix string) (object.Object, bool) {
	k := entryKey{fp, suffix}
	c.mu.Lock()
	if ref, ok := c.weak[k]; ok {
		if v := ref.Value(); v != nil {
			c.mu.Unlock()
			cacheHits.WithLabelValues("memory").Inc()
			return v, true
		}
		delete(c.weak, k)
		cacheWeakEntries.Set(float64(len(c.weak)))
	}
	c.mu.Unlock()

	if c.store == nil {
		cacheMisses.Inc()
		return nil, false
	}
	key := Key(fp)
	data, err := c.store.Get(key, suffix)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.Logger().Debug("cache read failed", "key", key, "suffix", suffix, "error", err)
		}
		cacheMisses.Inc()
		return nil, false
	}
	v, err := object.Unmarshal(data)
	if err != nil {
		var vm *object.VersionMismatchError
		if errors.As(err, &vm) {
			panic(fmt.Sprintf("cache: entry %s.%s in %s: %v; clear the cache", key, suffix, c.cfg.Dir, vm))
		}
		logging.Logger().Debug("cache decode failed", "key", key, "suffix", suffix, "error", err)
		cacheMisses.Inc()
		return nil, false
	}
	c.remember(k, v)
	cacheHits.WithLabelValues("disk").Inc()
	return v, true
}

// Store records v under (fp, suffix) and returns it. Persistent write
// failures are logged and otherwise ignored.
func (c *Cache) Store(v object.Object, fp uint64, suffix string) object.Object {
	c.remember(entryKey{fp, suffix}, v)
	cacheStores.Inc()
	if c.store == nil {
		return v
	}
	key := Key(fp)
	data, err := object.Marshal(v)
	if err == nil {
		err = c.store.Put(key, suffix, data)
	}
	if err != nil {
		cacheStoreErrors.Inc()
		logging.Logger().Warn("cache write failed", "key", key, "suffix", suffix, "error", err)
	}
	return v
}

func (c *Cache) remember(k entryKey, v object.Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weak[k] = object.Weak(v)
	c.sweepLocked()
	cacheWeakEntries.Set(float64(len(c.weak)))
}

// sweepLocked drops collected entries once the map has doubled since the
// last sweep.
func (c *Cache) sweepLocked() {
	if len(c.weak) < 64 || len(c.weak)&(len(c.weak)-1) != 0 {
		return
	}
	for k, ref := range c.weak {
		if ref.Value() == nil {
			delete(c.weak, k)
		}
	}
}

// Clear drops every entry from both tiers.
func (c *Cache) Clear() error {
	c.mu.Lock()
	clear(c.weak)
	cacheWeakEntries.Set(0)
	c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	return c.store.Clear()
}

// Stats reports the size of both tiers.
func (c *Cache) Stats() (Stats, error) {
	c.mu.Lock()
	s := Stats{
		Dir:         c.cfg.Dir,
		Backend:     c.cfg.Backend,
		Persist:     c.cfg.Persist,
		WeakEntries: len(c.weak),
	}
	c.mu.Unlock()
	if c.store == nil {
		return s, nil
	}
	n, size, err := c.store.Info()
	if err != nil {
		return s, fmt.Errorf("cache: stats: %w", err)
	}
	s.DiskEntries, s.DiskBytes = n, size
	return s, nil
}

// Close releases the persistent store.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
