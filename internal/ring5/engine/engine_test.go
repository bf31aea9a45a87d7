package engine_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikiitin/ring5/internal/ring5/engine"
	"github.com/nikiitin/ring5/internal/ring5/scanner"
	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/workpool"
)

const fakeScannerScript = "#!/bin/sh\necho '[{\"name\":\"simTicks\",\"type\":\"scalar\"}]'\n"
const fakeTokenizerScript = "#!/bin/sh\necho \"scalar/simTicks/10\"\n"

func writeScript(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))

	return path
}

func TestSubmitScanAsyncReturnsOneFuturePerFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "stats.txt"), []byte("x"), 0o644))

	scannerPath := writeScript(t, "fake-scanner.sh", fakeScannerScript)

	s, err := scanner.New(scannerPath, 0)
	require.NoError(t, err)

	e := engine.New(stattype.NewRegistry(), s, nil, nil)

	futures, err := e.SubmitScanAsync(context.Background(), root, "stats.txt", 0)
	require.NoError(t, err)
	require.Len(t, futures, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	vars, err := futures[0].Wait(ctx)
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Equal(t, "simTicks", vars[0].Name)
}

func TestAggregateScanResultsCollapsesFamilies(t *testing.T) {
	e := engine.New(stattype.NewRegistry(), nil, nil, nil)

	perFile := [][]scanner.Variable{
		{{Name: "system.cpu0.ipc", Kind: stattype.KindScalar}},
		{{Name: "system.cpu1.ipc", Kind: stattype.KindScalar}},
	}

	result := e.AggregateScanResults(perFile)
	require.Len(t, result, 1)
	assert.Equal(t, `system.cpu\d+.ipc`, result[0].Name)
}

func TestSubmitAndFinalizeParsingEndToEnd(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "stats.txt"), []byte("x"), 0o644))

	tokenizerPath := writeScript(t, "fake-tokenizer.sh", fakeTokenizerScript)

	registry := stattype.NewRegistry()
	pool := workpool.New(tokenizerPath, 2, nil)
	defer pool.Shutdown()

	e := engine.New(registry, nil, pool, nil)

	requests := []stattype.Request{{Name: "simTicks", Kind: stattype.KindScalar, Repeat: 1}}

	batch, err := e.SubmitParseAsync(root, "stats.txt", requests, "simple", nil)
	require.NoError(t, err)
	require.Len(t, batch.Futures, 1)
	assert.Equal(t, []string{"simTicks"}, batch.VarNames)

	outDir := t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	outPath, err := e.FinalizeParsing(ctx, outDir, batch)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "simTicks")
	assert.Contains(t, string(data), "10")
}

// fakeAggregatedTokenizerScript emits three scalar observations of a
// spatially-aggregated variable's constituents, mirroring the §4.1
// spatial-then-temporal aggregation scenario: the Line Parser must route
// every same-file constituent observation into the shared Stat, so the
// reduced value is their sum divided by repeat.
const fakeAggregatedTokenizerScript = "#!/bin/sh\n" +
	"echo \"scalar/system.cpu0.ipc/1\"\n" +
	"echo \"scalar/system.cpu1.ipc/2\"\n" +
	"echo \"scalar/system.cpu2.ipc/3\"\n"

func TestSubmitAndFinalizeParsingAggregatedRequestIsNotDropped(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "stats.txt"), []byte("x"), 0o644))

	tokenizerPath := writeScript(t, "fake-aggregated-tokenizer.sh", fakeAggregatedTokenizerScript)

	registry := stattype.NewRegistry()
	pool := workpool.New(tokenizerPath, 2, nil)
	defer pool.Shutdown()

	e := engine.New(registry, nil, pool, nil)

	requests := []stattype.Request{
		{
			Name:   `system\.cpu\d+\.ipc`,
			Kind:   stattype.KindScalar,
			Repeat: 1,
			Params: stattype.Params{ParsedIDs: []string{"system.cpu0.ipc", "system.cpu1.ipc", "system.cpu2.ipc"}},
		},
	}

	batch, err := e.SubmitParseAsync(root, "stats.txt", requests, "simple", nil)
	require.NoError(t, err)
	require.Len(t, batch.Futures, 1)

	outDir := t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	outPath, err := e.FinalizeParsing(ctx, outDir, batch)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	// (1+2+3)/repeat=3: 2 — not the padded zero a dropped observation
	// would produce.
	assert.Equal(t, "2", lines[1])
}

func TestSubmitParseAsyncRejectsUnknownStrategy(t *testing.T) {
	e := engine.New(stattype.NewRegistry(), nil, nil, nil)

	_, err := e.SubmitParseAsync(".", "*.txt", nil, "bogus", nil)
	require.ErrorIs(t, err, engine.ErrUnknownStrategy)
}
