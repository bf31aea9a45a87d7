package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikiitin/ring5/internal/ring5/engine"
	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/workpool"
)

const fakeTokenizerScript = "#!/bin/sh\necho \"scalar/simTicks/7\"\n"

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))

	return path
}

func newTestHandlers(t *testing.T) *handlers {
	t.Helper()

	tokenizerPath := writeScript(t, t.TempDir(), "fake-tokenizer.sh", fakeTokenizerScript)

	registry := stattype.NewRegistry()
	pool := workpool.New(tokenizerPath, 2, nil)
	t.Cleanup(pool.Shutdown)

	eng := engine.New(registry, nil, pool, nil)

	return &handlers{eng: eng, batches: newBatchStore()}
}

func writeRequestsYAML(t *testing.T, dir string) string {
	t.Helper()

	content := "- name: simTicks\n  kind: scalar\n  repeat: 1\n"
	path := filepath.Join(dir, "requests.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestHandleSubmitScan_EmptyRoot(t *testing.T) {
	h := newTestHandlers(t)

	result, _, err := h.handleSubmitScan(context.Background(), &mcpsdk.CallToolRequest{}, SubmitScanInput{Glob: "*.txt"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestSubmitParseAndFinalizeParsing_EndToEnd(t *testing.T) {
	h := newTestHandlers(t)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "stats.txt"), []byte("x"), 0o644))

	requestsPath := writeRequestsYAML(t, t.TempDir())

	parseInput := SubmitParseInput{Root: root, Glob: "stats.txt", RequestsPath: requestsPath}

	result, output, err := h.handleSubmitParse(context.Background(), &mcpsdk.CallToolRequest{}, parseInput)
	require.NoError(t, err)
	require.False(t, result.IsError)

	parseOut, ok := output.Data.(SubmitParseOutput)
	require.True(t, ok)
	assert.Equal(t, []string{"simTicks"}, parseOut.VarNames)
	assert.Equal(t, 1, parseOut.WorkCount)
	require.NotEmpty(t, parseOut.BatchID)

	outDir := t.TempDir()

	finalizeInput := FinalizeParsingInput{BatchID: parseOut.BatchID, OutputDir: outDir}

	result, output, err = h.handleFinalizeParsing(context.Background(), &mcpsdk.CallToolRequest{}, finalizeInput)
	require.NoError(t, err)
	require.False(t, result.IsError)

	finalizeOut, ok := output.Data.(FinalizeParsingOutput)
	require.True(t, ok)

	data, err := os.ReadFile(finalizeOut.ResultsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "simTicks")
	assert.Contains(t, string(data), "7")
}

func TestHandleFinalizeParsing_UnknownBatch(t *testing.T) {
	h := newTestHandlers(t)

	result, _, err := h.handleFinalizeParsing(context.Background(), &mcpsdk.CallToolRequest{}, FinalizeParsingInput{
		BatchID:   "batch-does-not-exist",
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
