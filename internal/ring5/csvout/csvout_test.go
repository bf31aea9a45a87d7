package csvout_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikiitin/ring5/internal/ring5/csvout"
	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/strategy"
	"github.com/nikiitin/ring5/internal/ring5/workpool"
)

func TestFinalizeWritesScalarAndVectorColumns(t *testing.T) {
	scalarA := stattype.NewScalar(1)
	require.NoError(t, scalarA.SetContent(1.5))

	vectorA := stattype.NewVector(1, []string{"core0", "core1"})
	require.NoError(t, vectorA.SetContent(map[string]float64{"core0": 2, "core1": 4}))

	results := []strategy.Result{
		{
			Result: workpool.Result{
				FilePath: "run1/stats.txt",
				StatByName: map[string]stattype.Stat{
					"simTicks": scalarA,
					"ipc":      vectorA,
				},
			},
		},
	}

	outDir := t.TempDir()

	path, err := csvout.Finalize(outDir, results, []string{"simTicks", "ipc"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "results.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "simTicks,ipc..core0,ipc..core1")
	assert.Contains(t, content, "1.5,2,4")
}

func TestFinalizeEmitsNaNForMissingVariable(t *testing.T) {
	scalarA := stattype.NewScalar(1)
	require.NoError(t, scalarA.SetContent(3))

	results := []strategy.Result{
		{
			Result: workpool.Result{
				FilePath:   "run1/stats.txt",
				StatByName: map[string]stattype.Stat{"simTicks": scalarA},
			},
		},
		{
			Result: workpool.Result{
				FilePath:   "run2/stats.txt",
				StatByName: map[string]stattype.Stat{},
			},
		},
	}

	outDir := t.TempDir()

	path, err := csvout.Finalize(outDir, results, []string{"simTicks"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := splitLines(string(data))
	require.Len(t, lines, 3)
	assert.Equal(t, "simTicks", lines[0])
	assert.Equal(t, "3", lines[1])
	assert.Equal(t, "NaN", lines[2])
}

func splitLines(s string) []string {
	var lines []string

	start := 0

	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				lines = append(lines, s[start:i])
			}

			start = i + 1
		}
	}

	if start < len(s) {
		lines = append(lines, s[start:])
	}

	return lines
}
