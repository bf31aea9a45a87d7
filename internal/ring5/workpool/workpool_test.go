package workpool_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nikiitin/ring5/internal/ring5/stattype"
	"github.com/nikiitin/ring5/internal/ring5/workpool"
)

const fakeTokenizerScript = "#!/bin/sh\necho \"scalar/simTicks/42\"\n"

func writeFakeTokenizer(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fake-tokenizer.sh")
	require.NoError(t, os.WriteFile(path, []byte(fakeTokenizerScript), 0o755))

	return path
}

func writeStatsFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stats.txt")
	require.NoError(t, os.WriteFile(path, []byte("simTicks 42\n"), 0o644))

	return path
}

func TestSizeFromEnvDefaultsWhenUnset(t *testing.T) {
	t.Setenv(workpool.PoolSizeEnvVar, "")
	require.Equal(t, workpool.DefaultPoolSize, workpool.SizeFromEnv())
}

func TestSizeFromEnvParsesOverride(t *testing.T) {
	t.Setenv(workpool.PoolSizeEnvVar, "7")
	require.Equal(t, 7, workpool.SizeFromEnv())
}

func TestSizeFromEnvRejectsNonPositive(t *testing.T) {
	t.Setenv(workpool.PoolSizeEnvVar, "-1")
	require.Equal(t, workpool.DefaultPoolSize, workpool.SizeFromEnv())
}

func TestPoolExecutesWorkAndDeliversResult(t *testing.T) {
	tokenizerPath := writeFakeTokenizer(t)
	filePath := writeStatsFile(t)

	registry := stattype.NewRegistry()
	stat, err := registry.NewStat(stattype.Request{Name: "simTicks", Kind: stattype.KindScalar, Repeat: 1})
	require.NoError(t, err)

	pool := workpool.New(tokenizerPath, 2, nil)
	defer pool.Shutdown()

	work := workpool.Work{
		FilePath:      filePath,
		StatByName:    map[string]stattype.Stat{"simTicks": stat},
		RequestedKind: map[string]stattype.Kind{"simTicks": stattype.KindScalar},
		Names:         []string{"simTicks"},
	}

	futures := pool.Submit([]workpool.Work{work})
	require.Len(t, futures, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := futures[0].Wait(ctx)
	require.NoError(t, err)
	require.NoError(t, result.Err)

	require.NoError(t, stat.BalanceContent())
	require.NoError(t, stat.ReduceDuplicates())

	value, err := stat.ReducedContent()
	require.NoError(t, err)
	require.InDelta(t, 42.0, value, 0.0001)
}

func TestPoolReportsMissingFileWithoutCancellingSiblings(t *testing.T) {
	tokenizerPath := writeFakeTokenizer(t)
	goodFile := writeStatsFile(t)

	registry := stattype.NewRegistry()

	statA, err := registry.NewStat(stattype.Request{Name: "simTicks", Kind: stattype.KindScalar, Repeat: 1})
	require.NoError(t, err)

	statB, err := registry.NewStat(stattype.Request{Name: "simTicks", Kind: stattype.KindScalar, Repeat: 1})
	require.NoError(t, err)

	pool := workpool.New(tokenizerPath, 2, nil)
	defer pool.Shutdown()

	works := []workpool.Work{
		{
			FilePath:      "/no/such/stats-file-ring5.txt",
			StatByName:    map[string]stattype.Stat{"simTicks": statA},
			RequestedKind: map[string]stattype.Kind{"simTicks": stattype.KindScalar},
			Names:         []string{"simTicks"},
		},
		{
			FilePath:      goodFile,
			StatByName:    map[string]stattype.Stat{"simTicks": statB},
			RequestedKind: map[string]stattype.Kind{"simTicks": stattype.KindScalar},
			Names:         []string{"simTicks"},
		},
	}

	futures := pool.Submit(works)
	require.Len(t, futures, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resultA, err := futures[0].Wait(ctx)
	require.NoError(t, err)
	require.ErrorIs(t, resultA.Err, workpool.ErrMissingFile)

	resultB, err := futures[1].Wait(ctx)
	require.NoError(t, err)
	require.NoError(t, resultB.Err)
}
