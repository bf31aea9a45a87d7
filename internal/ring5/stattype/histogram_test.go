package stattype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikiitin/ring5/internal/ring5/stattype"
)

func TestHistogramEntriesMatchRawBucketsWithoutRebinning(t *testing.T) {
	h := stattype.NewHistogram(1, nil, 0, 0)
	require.NoError(t, h.SetContent(map[string]float64{"1024-2047": 4, "2048-4095": 6}))

	assert.ElementsMatch(t, []string{"1024-2047", "2048-4095"}, h.Entries())
}

func TestHistogramEntriesMatchReducedContentKeysWhenRebinned(t *testing.T) {
	h := stattype.NewHistogram(1, nil, 2, 4096)
	require.NoError(t, h.SetContent(map[string]float64{"1024-2047": 4, "2048-4095": 6}))

	require.NoError(t, h.BalanceContent())
	require.NoError(t, h.ReduceDuplicates())

	reduced, err := h.ReducedContent()
	require.NoError(t, err)

	m, ok := reduced.(map[string]float64)
	require.True(t, ok)

	for _, entry := range h.Entries() {
		_, ok := m[entry]
		assert.True(t, ok, "Entries() key %q missing from ReducedContent", entry)
	}

	assert.ElementsMatch(t, []string{"0-2048", "2048-4096"}, h.Entries())
}

func TestHistogramEntriesKeepsNonRangeKeysAlongsideRebinnedTargets(t *testing.T) {
	h := stattype.NewHistogram(1, nil, 2, 4096)
	require.NoError(t, h.SetContent(map[string]float64{"1024-2047": 4, "overflow": 1}))

	require.NoError(t, h.BalanceContent())
	require.NoError(t, h.ReduceDuplicates())

	assert.ElementsMatch(t, []string{"overflow", "0-2048", "2048-4096"}, h.Entries())
}
