package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/csgtree/pkg/cache"
	"github.com/chazu/csgtree/pkg/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "csgtree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, cache.DefaultDir, cfg.Cache.Dir)
	assert.True(t, cfg.Cache.Persist)
	assert.Equal(t, 5.0, cfg.Rasterize.MinAngle)
	assert.Equal(t, 0.1, cfg.Rasterize.MinSize)
}

func TestMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
cache:
  dir: /tmp/gears
  persist: false
  backend: badger
rasterize:
  min_size: 0.02
log:
  level: debug
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cache.Config{Dir: "/tmp/gears", Persist: false, Backend: cache.BackendBadger}, cfg.Cache)
	assert.Equal(t, 0.02, cfg.Rasterize.MinSize)
	assert.Equal(t, 5.0, cfg.Rasterize.MinAngle)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "cache:\n  dir: from-file\n")
	t.Setenv("CSGTREE_CACHE_DIR", "from-env")
	t.Setenv("CSGTREE_CACHE_PERSIST", "false")
	t.Setenv("CSGTREE_LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Cache.Dir)
	assert.False(t, cfg.Cache.Persist)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"backend", "cache:\n  backend: tape\n", "unknown backend"},
		{"angle", "rasterize:\n  min_angle: 0\n", "min_angle"},
		{"size", "rasterize:\n  min_size: -1\n", "min_size"},
		{"level", "log:\n  level: loud\n", "unknown level"},
		{"yaml", "cache: [", "load"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, tt.body))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
