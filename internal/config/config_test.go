package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluxkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  verbose: true
counter:
  initial: 42
todo:
  filter: active
  seed:
    - write docs
    - ship it
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Logging.Verbose)
	assert.Equal(t, 42, cfg.Counter.Initial)
	assert.Equal(t, "active", cfg.Todo.Filter)
	assert.Equal(t, []string{"write docs", "ship it"}, cfg.Todo.Seed)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluxkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("counter: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluxkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("counter:\n  initial: 1\n"), 0o644))

	t.Setenv("FLUXKIT_COUNTER_INITIAL", "9")
	t.Setenv("FLUXKIT_VERBOSE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Counter.Initial)
	assert.True(t, cfg.Logging.Verbose)
}

func TestEnvRejectsGarbage(t *testing.T) {
	t.Setenv("FLUXKIT_VERBOSE", "definitely")
	_, err := Load("")
	assert.Error(t, err)
}
