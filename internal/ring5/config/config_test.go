package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikiitin/ring5/internal/ring5/config"
	"github.com/nikiitin/ring5/internal/ring5/stattype"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.WorkerPoolSize)
	assert.Equal(t, "simple", cfg.Strategy)
}

func TestLoadConfigRejectsUnknownStrategy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ring5.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strategy: bogus\n"), 0o644))

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrInvalidStrategy)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("RING5_WORKER_POOL_SIZE", "9")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.WorkerPoolSize)
}

func TestLoadRequestsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.yaml")
	doc := `
- name: simTicks
  kind: scalar
  repeat: 1
- name: system.cpu.ipc
  kind: vector
  entries: ["core0", "core1"]
  repeat: 1
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	requests, err := config.LoadRequests(path)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "simTicks", requests[0].Name)
	assert.Equal(t, stattype.KindScalar, requests[0].Kind)
	assert.Equal(t, []string{"core0", "core1"}, requests[1].Params.Entries)
}

func TestLoadRequestsJSONValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.json")
	doc := `[{"name": "simTicks", "kind": "scalar", "repeat": 1}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	requests, err := config.LoadRequests(path)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "simTicks", requests[0].Name)
}

func TestLoadRequestsJSONRejectsMissingName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.json")
	doc := `[{"kind": "scalar"}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := config.LoadRequests(path)
	require.ErrorIs(t, err, config.ErrRequestSchemaInvalid)
}

func TestLoadRequestsJSONRejectsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.json")
	doc := `[{"name": "x", "kind": "bogus"}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := config.LoadRequests(path)
	require.ErrorIs(t, err, config.ErrRequestSchemaInvalid)
}

func TestLoadRequestsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.toml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := config.LoadRequests(path)
	require.ErrorIs(t, err, config.ErrUnknownRequestFormat)
}
