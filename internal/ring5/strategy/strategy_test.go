package strategy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/strategy"
	"github.com/nikiitin/ring5/internal/ring5/workpool"
)

func requests() []stattype.Request {
	return []stattype.Request{
		{Name: "simTicks", Kind: stattype.KindScalar, Repeat: 1},
	}
}

func TestSimpleDiscoversFilesAndBuildsWork(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "stats.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("x"), 0o644))

	sub := filepath.Join(root, "run2")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "stats.txt"), []byte("x"), 0o644))

	s := strategy.NewSimple(stattype.NewRegistry())

	works, varNames, err := s.GetWorkItems(root, "stats.txt", requests())
	require.NoError(t, err)
	assert.Equal(t, []string{"simTicks"}, varNames)
	assert.Len(t, works, 2)

	for _, w := range works {
		assert.Contains(t, w.StatByName, "simTicks")
		assert.Equal(t, []string{"simTicks"}, w.Names)
	}
}

func TestSimplePostProcessIsIdentity(t *testing.T) {
	s := strategy.NewSimple(stattype.NewRegistry())

	results := []workpool.Result{{FilePath: "a.txt"}, {FilePath: "b.txt"}}

	wrapped, err := s.PostProcess(results)
	require.NoError(t, err)
	require.Len(t, wrapped, 2)
	assert.Nil(t, wrapped[0].Config)
	assert.Equal(t, "a.txt", wrapped[0].FilePath)
}

func TestConfigAwareAttachesSidecarSections(t *testing.T) {
	root := t.TempDir()
	statsPath := filepath.Join(root, "stats.txt")
	require.NoError(t, os.WriteFile(statsPath, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "config.ini"), []byte("[sim]\ncpus=4\n"), 0o644))

	s := strategy.NewConfigAware(stattype.NewRegistry(), nil)

	wrapped, err := s.PostProcess([]workpool.Result{{FilePath: statsPath}})
	require.NoError(t, err)
	require.Len(t, wrapped, 1)
	assert.Equal(t, "4", wrapped[0].Config["sim"]["cpus"])
}

func TestSimpleBuildWorkMapsAggregatedAliasesToRequestedKind(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "stats.txt"), []byte("x"), 0o644))

	aggregated := []stattype.Request{
		{
			Name:   "system.cpu.*.ipc",
			Kind:   stattype.KindScalar,
			Repeat: 1,
			Params: stattype.Params{ParsedIDs: []string{"system.cpu0.ipc", "system.cpu1.ipc"}},
		},
	}

	s := strategy.NewSimple(stattype.NewRegistry())

	works, varNames, err := s.GetWorkItems(root, "stats.txt", aggregated)
	require.NoError(t, err)
	assert.Equal(t, []string{"system.cpu.*.ipc"}, varNames)
	require.Len(t, works, 1)

	w := works[0]
	assert.Equal(t, stattype.KindScalar, w.RequestedKind["system.cpu0.ipc"])
	assert.Equal(t, stattype.KindScalar, w.RequestedKind["system.cpu1.ipc"])
	assert.Contains(t, w.StatByName, "system.cpu0.ipc")
	assert.Contains(t, w.StatByName, "system.cpu1.ipc")
	assert.Same(t, w.StatByName["system.cpu0.ipc"], w.StatByName["system.cpu1.ipc"])
}

func TestConfigAwareMissingSidecarIsEmptyMapping(t *testing.T) {
	root := t.TempDir()
	statsPath := filepath.Join(root, "stats.txt")
	require.NoError(t, os.WriteFile(statsPath, []byte("x"), 0o644))

	s := strategy.NewConfigAware(stattype.NewRegistry(), nil)

	wrapped, err := s.PostProcess([]workpool.Result{{FilePath: statsPath}})
	require.NoError(t, err)
	require.Len(t, wrapped, 1)
	assert.Empty(t, wrapped[0].Config[""])
}
